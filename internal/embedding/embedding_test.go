package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedder_deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	a, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d", i)
		}
	}
	c, err := e.Embed(context.Background(), "goodbye")
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestMockEmbedder_unitNorm(t *testing.T) {
	e := NewMockEmbedder(16)
	v, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("norm^2 = %f", sum)
	}
}

func TestMockEmbedder_batch(t *testing.T) {
	e := NewMockEmbedder(4)
	got, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d embeddings", len(got))
	}
	for i, v := range got {
		if len(v) != 4 {
			t.Errorf("embedding %d has %d dims", i, len(v))
		}
	}
}

func TestCache_lruEviction(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	// touch "a" so "b" is the LRU entry
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", []float32{3})

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
	if c.Len() != 2 {
		t.Errorf("len: %d", c.Len())
	}
}

func TestCache_updateExisting(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("a", []float32{9})
	v, ok := c.Get("a")
	if !ok || v[0] != 9 {
		t.Errorf("got %v %v", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("len: %d", c.Len())
	}
}

func TestSimpleTokenizer(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, mask, types := tok.Tokenize("hello world", 8)
	if len(ids) != 8 || len(mask) != 8 || len(types) != 8 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(mask), len(types))
	}
	if ids[0] != 101 {
		t.Errorf("missing [CLS]: %d", ids[0])
	}
	// [CLS] + 2 words + [SEP]
	var attended int
	for _, m := range mask {
		if m == 1 {
			attended++
		}
	}
	if attended != 4 {
		t.Errorf("attended tokens: %d", attended)
	}
	if ids[3] != 102 {
		t.Errorf("missing [SEP]: %d", ids[3])
	}
}

func TestSimpleTokenizer_truncates(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, _, _ := tok.Tokenize("a b c d e f g h i j", 4)
	if len(ids) != 4 {
		t.Fatalf("len: %d", len(ids))
	}
}
