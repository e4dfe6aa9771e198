package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 4)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRunVariantSuccess(t *testing.T) {
	var gotKey, gotEngine string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")
		require.NoError(t, r.ParseMultipartForm(10<<20))
		gotEngine = r.FormValue("OCREngine")
		assert.Equal(t, "eng", r.FormValue("language"))
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"next friday 4pm dentist\r\n","FileParseExitCode":1}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2)
	got := c.Run(context.Background(), testPNG(t))

	assert.Equal(t, "next friday 4pm dentist", got.Text)
	assert.Equal(t, ConfidenceVariant, got.Confidence)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "2", gotEngine)
}

func TestRunRawRetryWhenUndecodable(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"gp tomorrow"}]}`))
	}))
	defer srv.Close()

	// Not an image: no preprocessing variants, only the raw attempt.
	c := NewClient(srv.URL, "", 0)
	got := c.Run(context.Background(), []byte("plain text, not an image"))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "gp tomorrow", got.Text)
	assert.Equal(t, ConfidenceRaw, got.Confidence)
}

func TestRunSalvageWhenProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	got := c.Run(context.Background(), []byte("See DENTIST  next\tfriday!! 4pm"))

	assert.Equal(t, "see dentist next friday 4pm", got.Text)
	assert.Equal(t, ConfidenceSalvage, got.Confidence)
}

func TestRunProviderProcessingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"IsErroredOnProcessing":true,"ErrorMessage":["file too large"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	got := c.Run(context.Background(), []byte("dentist 4pm"))

	assert.Equal(t, ConfidenceSalvage, got.Confidence)
	assert.Equal(t, "dentist 4pm", got.Text)
}

func TestRunEmptyInput(t *testing.T) {
	c := NewClient("http://unused", "", 0)
	got := c.Run(context.Background(), nil)
	assert.Equal(t, Result{}, got)
}

func TestVariants(t *testing.T) {
	vs := Variants(testPNG(t))
	require.Len(t, vs, 3)
	assert.Equal(t, "base", vs[0].Name)
	assert.Equal(t, "gray_norm", vs[1].Name)
	assert.Equal(t, "threshold_140", vs[2].Name)

	// A thresholded variant decodes to pure black and white.
	img, _, err := image.Decode(bytes.NewReader(vs[2].PNG))
	require.NoError(t, err)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			assert.Contains(t, []uint8{0, 255}, g.Y)
		}
	}

	assert.Nil(t, Variants([]byte("not an image")))
}

func TestShrinkToWidthNeverEnlarges(t *testing.T) {
	small := image.NewGray(image.Rect(0, 0, 10, 10))
	assert.Equal(t, 10, shrinkToWidth(small, 2000).Bounds().Dx())

	wide := image.NewGray(image.Rect(0, 0, 4000, 10))
	assert.Equal(t, 2000, shrinkToWidth(wide, 2000).Bounds().Dx())
}

func TestSalvage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"See DENTIST next friday!! 4pm", "see dentist next friday 4pm"},
		{"a@b 10:30, x-y/z.", "a@b 10:30, x-y/z."},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Salvage([]byte(tt.in)); got != tt.want {
			t.Errorf("Salvage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
