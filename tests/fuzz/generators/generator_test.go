package generators

import (
	"strings"
	"testing"
)

func TestGenerateProgram_Deterministic(t *testing.T) {
	data := []byte{3, 1, 4, 1, 5, 9, 2, 6}
	a := NewFromData(data).GenerateProgram()
	b := NewFromData(data).GenerateProgram()
	if a != b {
		t.Fatal("same data should generate the same program")
	}
}

func TestGenerateProgram_AlwaysHasMain(t *testing.T) {
	for _, data := range [][]byte{nil, {0}, {255, 254, 253}} {
		out := NewFromData(data).GenerateProgram()
		if !strings.Contains(out, "fun main = {") {
			t.Errorf("program without main:\n%s", out)
		}
	}
}
