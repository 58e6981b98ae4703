package canvas

// HistoryCapacity 最多保留的蒙版快照数
const HistoryCapacity = 10

type snapshot struct {
	pix    []uint8
	marked bool
}

// history 固定容量的环形缓冲，满了淘汰最旧的
type history struct {
	buf   [HistoryCapacity]snapshot
	start int
	n     int
}

func (h *history) push(s snapshot) {
	if h.n == HistoryCapacity {
		h.buf[h.start] = snapshot{}
		h.start = (h.start + 1) % HistoryCapacity
		h.n--
	}
	h.buf[(h.start+h.n)%HistoryCapacity] = s
	h.n++
}

func (h *history) pop() (snapshot, bool) {
	if h.n == 0 {
		return snapshot{}, false
	}
	i := (h.start + h.n - 1) % HistoryCapacity
	s := h.buf[i]
	h.buf[i] = snapshot{}
	h.n--
	return s, true
}

func (h *history) peek() (snapshot, bool) {
	if h.n == 0 {
		return snapshot{}, false
	}
	return h.buf[(h.start+h.n-1)%HistoryCapacity], true
}

func (h *history) reset() {
	*h = history{}
}

func (h *history) len() int {
	return h.n
}
