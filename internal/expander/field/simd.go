package field

import "fmt"

// Packed is a generic SimdField: PackSize lanes of any scalar Field,
// arithmetic applied lane-wise. The lane count is set when the
// PackedDescriptor is built; it is not a compile-time constant.
type Packed struct {
	lanes []Element
}

// PackedDescriptor packs and unpacks fixed-width lane vectors of a scalar
// field, implementing SimdFieldDescriptor.
type PackedDescriptor struct {
	Scalar   Field
	packSize int
}

// NewPackedDescriptor builds a SIMD descriptor packing packSize lanes of
// the given scalar field.
func NewPackedDescriptor(scalar Field, packSize int) *PackedDescriptor {
	return &PackedDescriptor{Scalar: scalar, packSize: packSize}
}

func (d *PackedDescriptor) PackSize() int { return d.packSize }

func (d *PackedDescriptor) Pack(lanes []Element) (SimdField, error) {
	if len(lanes) != d.packSize {
		return nil, fmt.Errorf("field: pack expects %d lanes, got %d", d.packSize, len(lanes))
	}
	cp := make([]Element, d.packSize)
	copy(cp, lanes)
	return &Packed{lanes: cp}, nil
}

func (p *Packed) PackSize() int { return len(p.lanes) }

func (p *Packed) Unpack() []Element {
	out := make([]Element, len(p.lanes))
	copy(out, p.lanes)
	return out
}

func (p *Packed) Scale(scalar Element) SimdField {
	out := make([]Element, len(p.lanes))
	for i, l := range p.lanes {
		out[i] = l.Mul(scalar)
	}
	return &Packed{lanes: out}
}

func (p *Packed) HorizontalSum() Element {
	acc := p.lanes[0]
	for _, l := range p.lanes[1:] {
		acc = acc.Add(l)
	}
	return acc
}

func (p *Packed) Add(b Element) Element { return p.lanewise(b, Element.Add) }
func (p *Packed) Sub(b Element) Element { return p.lanewise(b, Element.Sub) }
func (p *Packed) Mul(b Element) Element { return p.lanewise(b, Element.Mul) }

func (p *Packed) lanewise(b Element, op func(Element, Element) Element) Element {
	o := b.(*Packed)
	out := make([]Element, len(p.lanes))
	for i := range p.lanes {
		out[i] = op(p.lanes[i], o.lanes[i])
	}
	return &Packed{lanes: out}
}

func (p *Packed) Neg() Element {
	out := make([]Element, len(p.lanes))
	for i, l := range p.lanes {
		out[i] = l.Neg()
	}
	return &Packed{lanes: out}
}

func (p *Packed) Square() Element { return p.Mul(p) }

func (p *Packed) Inv() (Element, bool) {
	out := make([]Element, len(p.lanes))
	for i, l := range p.lanes {
		inv, ok := l.Inv()
		if !ok {
			return nil, false
		}
		out[i] = inv
	}
	return &Packed{lanes: out}, true
}

func (p *Packed) Exp(exponent uint64) Element {
	out := make([]Element, len(p.lanes))
	for i, l := range p.lanes {
		out[i] = l.Exp(exponent)
	}
	return &Packed{lanes: out}
}

func (p *Packed) IsZero() bool {
	for _, l := range p.lanes {
		if !l.IsZero() {
			return false
		}
	}
	return true
}

func (p *Packed) Equal(b Element) bool {
	o, ok := b.(*Packed)
	if !ok || len(o.lanes) != len(p.lanes) {
		return false
	}
	for i := range p.lanes {
		if !p.lanes[i].Equal(o.lanes[i]) {
			return false
		}
	}
	return true
}

func (p *Packed) Bytes() []byte {
	var out []byte
	for _, l := range p.lanes {
		out = append(out, l.Bytes()...)
	}
	return out
}

func (p *Packed) String() string {
	return fmt.Sprintf("%v", p.lanes)
}

var _ SimdField = (*Packed)(nil)
