// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kmac

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func seq(start byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = start + byte(i)
	}
	return b
}

// NIST SP 800-185 KMAC256 samples.
var vectors = []struct {
	name          string
	data          []byte
	customization string
	tag           string
}{
	{
		name:          "sample 4",
		data:          seq(0, 4),
		customization: "My Tagged Application",
		tag: "20c570c31346f703c9ac36c61c03cb64c3970d0cfc787e9b79599d273a68d2f7" +
			"f69d4cc3de9d104a351689f27cf6f5951f0103f33f4f24871024d9c27773a8dd",
	},
	{
		name: "sample 5",
		data: seq(0, 200),
		tag: "75358cf39e41494e949707927cee0af20a3ff553904c86b08f21cc414bcfd691" +
			"589d27cf5e15369cbbff8b9a4c2eb17800855d0235ff635da82533ec6b759b69",
	},
	{
		name:          "sample 6",
		data:          seq(0, 200),
		customization: "My Tagged Application",
		tag: "b58618f71f92e1d56c1b8c55ddd7cd188b97b4ca4d99831eb2699a837da2e4d9" +
			"70fbacfde50033aea585f1a2708510c32d07880801bd182898fe476876fc8965",
	},
}

func TestVectors(t *testing.T) {
	key := seq(0x40, 32)
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			h := New(key, 64, []byte(v.customization))
			h.Write(v.data)
			got := h.Sum(nil)
			if hex.EncodeToString(got) != v.tag {
				t.Fatalf("tag %x, want %s", got, v.tag)
			}
			// Sum must not disturb the running state.
			if again := h.Sum(nil); !bytes.Equal(again, got) {
				t.Fatalf("second Sum %x differs", again)
			}
			h.Reset()
			h.Write(v.data)
			if after := h.Sum(nil); !bytes.Equal(after, got) {
				t.Fatalf("Sum after Reset %x differs", after)
			}
		})
	}
}

func TestTagLengthBound(t *testing.T) {
	key := seq(0x40, 32)
	h := New(key, 32, []byte("ntru"))
	h.Write(seq(0, 4))
	want := "ab6daf920bcbfa569d7d0913012a4ff18e7460cc41f4618e7fa9a178c6ff5c88"
	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		t.Fatalf("tag %s, want %s", got, want)
	}
	if h.Size() != 32 {
		t.Fatalf("Size %d", h.Size())
	}
}

func TestPanics(t *testing.T) {
	for name, f := range map[string]func(){
		"short key": func() { New(make([]byte, 31), 32, nil) },
		"short tag": func() { New(make([]byte, 32), 7, nil) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("no panic")
				}
			}()
			f()
		})
	}
}

func TestEncodings(t *testing.T) {
	for _, c := range []struct {
		x           uint64
		left, right string
	}{
		{0, "0100", "0001"},
		{136, "0188", "8801"},
		{512, "020200", "020002"},
		{1 << 63, "088000000000000000", "800000000000000008"},
	} {
		if got := hex.EncodeToString(leftEncode(c.x)); got != c.left {
			t.Errorf("leftEncode(%d) = %s, want %s", c.x, got, c.left)
		}
		if got := hex.EncodeToString(rightEncode(c.x)); got != c.right {
			t.Errorf("rightEncode(%d) = %s, want %s", c.x, got, c.right)
		}
	}
}
