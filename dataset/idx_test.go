package dataset

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func encodeIDXImages(t *testing.T, images [][]byte, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []uint32{idxMagicImages, uint32(len(images)), uint32(h), uint32(w)} {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, img := range images {
		buf.Write(img)
	}
	return buf.Bytes()
}

func encodeIDXLabels(t *testing.T, labels []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []uint32{idxMagicLabels, uint32(len(labels))} {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	buf.Write(labels)
	return buf.Bytes()
}

func TestReadIDXImages(t *testing.T) {
	images := [][]byte{{0, 128, 255, 64}, {10, 20, 30, 40}}
	data := encodeIDXImages(t, images, 2, 2)

	set, err := ReadIDXImages(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadIDXImages() error = %v", err)
	}
	if len(set.Images) != 2 || set.Width != 2 || set.Height != 2 {
		t.Fatalf("set = %d images %dx%d, want 2 images 2x2", len(set.Images), set.Width, set.Height)
	}
	if set.Images[0][2] != 255 {
		t.Errorf("pixel = %d, want 255", set.Images[0][2])
	}
}

func TestReadIDXImagesBadMagic(t *testing.T) {
	data := encodeIDXLabels(t, []byte{1}) // label magic where image magic expected
	if _, err := ReadIDXImages(bytes.NewReader(data)); err == nil {
		t.Error("ReadIDXImages() with label magic expected error")
	}
}

func TestReadIDXImagesTruncated(t *testing.T) {
	data := encodeIDXImages(t, [][]byte{{1, 2, 3, 4}}, 2, 2)
	if _, err := ReadIDXImages(bytes.NewReader(data[:len(data)-2])); err == nil {
		t.Error("ReadIDXImages() on truncated data expected error")
	}
}

func TestLoadImageSetGzip(t *testing.T) {
	dir := t.TempDir()
	writeGz := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := gz.Close(); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	imgPath := writeGz("images.gz", encodeIDXImages(t, [][]byte{{0, 255}, {128, 128}}, 2, 1))
	lblPath := writeGz("labels.gz", encodeIDXLabels(t, []byte{7, 2}))

	set, err := LoadImageSet(imgPath, lblPath)
	if err != nil {
		t.Fatalf("LoadImageSet() error = %v", err)
	}
	if set.Labels[0] != 7 || set.Labels[1] != 2 {
		t.Errorf("labels = %v, want [7 2]", set.Labels)
	}
}

func TestLoadImageSetCountMismatch(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "images")
	lblPath := filepath.Join(dir, "labels")
	if err := os.WriteFile(imgPath, encodeIDXImages(t, [][]byte{{1}}, 1, 1), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lblPath, encodeIDXLabels(t, []byte{1, 2}), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImageSet(imgPath, lblPath); err == nil {
		t.Error("LoadImageSet() with mismatched counts expected error")
	}
}

func TestImageSetMatrix(t *testing.T) {
	set := &ImageSet{
		Images: [][]byte{{0, 255}, {51, 102}},
		Labels: []int{0, 1},
		Width:  2,
		Height: 1,
	}

	X := set.Matrix()
	r, c := X.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("Matrix() dims = (%d, %d), want (2, 2)", r, c)
	}
	if got := X.At(0, 1); got != 1.0 {
		t.Errorf("pixel 255 scaled = %v, want 1", got)
	}
	if got := X.At(1, 0); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("pixel 51 scaled = %v, want 0.2", got)
	}

	y, err := set.LabelVector()
	if err != nil {
		t.Fatalf("LabelVector() error = %v", err)
	}
	if y.At(1, 0) != 1 {
		t.Errorf("label = %v, want 1", y.At(1, 0))
	}
}
