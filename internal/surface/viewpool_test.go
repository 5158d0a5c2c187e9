package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewPoolRoundTrip(t *testing.T) {
	p := NewViewPool()

	assert.Nil(t, p.Dequeue(ReuseImageText))

	a := &AnnotationView{ReuseID: ReuseImageText, Text: "a"}
	b := &AnnotationView{ReuseID: ReuseImageText, Text: "b"}
	pin := &AnnotationView{ReuseID: ReusePin}
	p.Enqueue(a)
	p.Enqueue(b)
	p.Enqueue(pin)

	assert.Equal(t, 2, p.Len(ReuseImageText))
	assert.Equal(t, 1, p.Len(ReusePin))

	assert.Same(t, a, p.Dequeue(ReuseImageText))
	assert.Same(t, b, p.Dequeue(ReuseImageText))
	assert.Nil(t, p.Dequeue(ReuseImageText))
	assert.Same(t, pin, p.Dequeue(ReusePin))
}

func TestViewPoolIgnoresUnpoolableViews(t *testing.T) {
	p := NewViewPool()
	p.Enqueue(nil)
	p.Enqueue(&AnnotationView{})
	assert.Equal(t, 0, p.Len(""))
}

func TestViewPoolClear(t *testing.T) {
	p := NewViewPool()
	p.Enqueue(&AnnotationView{ReuseID: ReuseImageText})
	p.Enqueue(&AnnotationView{ReuseID: ReusePin})
	p.Clear()
	assert.Equal(t, 0, p.Len(ReuseImageText))
	assert.Equal(t, 0, p.Len(ReusePin))
	assert.Nil(t, p.Dequeue(ReusePin))
}
