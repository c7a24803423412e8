package pqhash

// Growth policy for posting lists, mirroring Array32's process-wide
// resize factor/additive-term pair. Set once via SetGrowthPolicy before
// building any table; the defaults match the dynamic-array growth used
// by the original sparse hash table.
var (
	resizeFactor = 1.1
	resizeAdd    = 2.0
)

// SetGrowthPolicy configures how posting lists grow as entries are
// inserted. factor must be >= 1 and add must be >= 0. Call this before
// constructing any Table; it has no effect on already-built tables.
func SetGrowthPolicy(factor, add float64) {
	if factor < 1 {
		panic("pqhash: growth factor must be >= 1")
	}
	if add < 0 {
		panic("pqhash: growth additive term must be >= 0")
	}
	resizeFactor = factor
	resizeAdd = add
}

// postingList is a dynamic array of uint32 ids, grown geometrically like
// the original Array32: each time capacity is exhausted, the new capacity
// is max(len+1, floor(len*resizeFactor + resizeAdd)).
type postingList struct {
	data []uint32
}

func newPostingList() *postingList {
	return &postingList{}
}

func (p *postingList) push(id uint32) {
	if len(p.data) == cap(p.data) {
		newCap := int(float64(len(p.data))*resizeFactor + resizeAdd)
		if newCap <= len(p.data) {
			newCap = len(p.data) + 1
		}
		grown := make([]uint32, len(p.data), newCap)
		copy(grown, p.data)
		p.data = grown
	}
	p.data = append(p.data, id)
}

func (p *postingList) size() int { return len(p.data) }
