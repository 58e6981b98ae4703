// Package export 可打印的导出格式
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDF 单页 PDF，页面尺寸等于图片像素尺寸（单位 pt）
func PDF(img image.Image, w io.Writer) error {
	if img == nil || img.Bounds().Empty() {
		return errors.New("empty image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	width := float64(img.Bounds().Dx())
	height := float64(img.Bounds().Dy())

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("surface", opt, &buf)
	p.ImageOptions("surface", 0, 0, width, height, false, opt, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
