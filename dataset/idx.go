package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/pkg/errors"
)

// IDX magic numbers: unsigned byte data with 1 (labels) or 3 (images)
// dimensions. This is the format Fashion-MNIST and MNIST ship in.
const (
	idxMagicLabels = 0x00000801
	idxMagicImages = 0x00000803
)

// ImageSet holds a loaded image dataset as raw 8-bit grayscale rows.
type ImageSet struct {
	Images [][]byte // each image is Width*Height bytes, row-major
	Labels []int    // empty until paired with a label file
	Width  int
	Height int
}

// LoadIDXImages reads an IDX3 image file (gzipped or plain, detected from the
// ".gz" suffix) into an ImageSet with no labels.
func LoadIDXImages(path string) (*ImageSet, error) {
	r, closeFn, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return ReadIDXImages(r)
}

// LoadIDXLabels reads an IDX1 label file into an int slice.
func LoadIDXLabels(path string) ([]int, error) {
	r, closeFn, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return ReadIDXLabels(r)
}

// LoadImageSet loads an image file and its matching label file, verifying the
// counts line up.
func LoadImageSet(imagePath, labelPath string) (*ImageSet, error) {
	set, err := LoadIDXImages(imagePath)
	if err != nil {
		return nil, err
	}
	labels, err := LoadIDXLabels(labelPath)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(set.Images) {
		return nil, errors.NewDimensionError("dataset.LoadImageSet", len(set.Images), len(labels), 0)
	}
	set.Labels = labels
	return set, nil
}

// ReadIDXImages parses IDX3 image content from a reader.
func ReadIDXImages(r io.Reader) (*ImageSet, error) {
	var header [4]uint32
	for i := range header {
		if err := binary.Read(r, binary.BigEndian, &header[i]); err != nil {
			return nil, errors.Wrap(err, "idx: truncated image header")
		}
	}
	if header[0] != idxMagicImages {
		return nil, errors.Newf("idx: bad image magic 0x%08x", header[0])
	}
	count := int(header[1])
	height := int(header[2])
	width := int(header[3])
	if count <= 0 || height <= 0 || width <= 0 {
		return nil, errors.Newf("idx: invalid dimensions %dx%dx%d", count, height, width)
	}

	size := width * height
	images := make([][]byte, count)
	for i := range images {
		img := make([]byte, size)
		if _, err := io.ReadFull(r, img); err != nil {
			return nil, errors.Wrapf(err, "idx: truncated image %d", i)
		}
		images[i] = img
	}
	return &ImageSet{Images: images, Width: width, Height: height}, nil
}

// ReadIDXLabels parses IDX1 label content from a reader.
func ReadIDXLabels(r io.Reader) ([]int, error) {
	var magic, count uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, errors.Wrap(err, "idx: truncated label header")
	}
	if magic != idxMagicLabels {
		return nil, errors.Newf("idx: bad label magic 0x%08x", magic)
	}
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, errors.Wrap(err, "idx: truncated label header")
	}

	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "idx: truncated labels")
	}
	labels := make([]int, count)
	for i, b := range buf {
		labels[i] = int(b)
	}
	return labels, nil
}

// Matrix flattens the images into an n x (width*height) matrix with pixel
// values rescaled from [0, 255] to [0, 1], the usual neural-network input
// scaling.
func (s *ImageSet) Matrix() *mat.Dense {
	n := len(s.Images)
	size := s.Width * s.Height
	out := mat.NewDense(n, size, nil)
	for i, img := range s.Images {
		for j, px := range img {
			out.Set(i, j, float64(px)/255.0)
		}
	}
	return out
}

// LabelVector returns the labels as an n x 1 matrix.
func (s *ImageSet) LabelVector() (*mat.Dense, error) {
	if len(s.Labels) == 0 {
		return nil, errors.NewModelError("ImageSet.LabelVector", "no labels loaded", errors.ErrEmptyData)
	}
	out := mat.NewDense(len(s.Labels), 1, nil)
	for i, l := range s.Labels {
		out.Set(i, 0, float64(l))
	}
	return out, nil
}

func openMaybeGzip(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open %s", path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return bufio.NewReader(f), f.Close, nil
	}
	gz, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "failed to open gzip stream %s", path)
	}
	closeFn := func() error {
		gzErr := gz.Close()
		if err := f.Close(); err != nil {
			return err
		}
		return gzErr
	}
	return gz, closeFn, nil
}
