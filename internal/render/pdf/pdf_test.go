package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/render/export"
)

func sampleDocument(paragraphs int) render.Document {
	var text strings.Builder
	for i := 0; i < paragraphs; i++ {
		text.WriteString("• Majlis program details for the evening session\n")
	}
	p := model.NewPublication("Weekly")
	p.Sections = []model.Section{{
		ID: "s1", DepartmentID: "A", DepartmentName: "Umoor Deeniyah",
		Children: []model.Block{
			model.NewTextBlock(text.String(), model.LanguagePrimary),
			model.NewImageBlock("", ""),
			model.NewMenuBlock("Niyaz", model.MenuItem{Name: "Soup", Nutrition: "120kcal", Allergens: "Dairy"}),
		},
	}}
	return render.NewDocument(render.Input{Publication: p, LocationName: "Pune"}, render.Profile{}, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
}

func TestParsePageFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    PageFormat
		wantErr bool
	}{
		{"", PageA4, false},
		{"A4", PageA4, false},
		{" letter ", PageLetter, false},
		{"a5", PageA5, false},
		{"tabloid", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePageFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	o, err := ParseOrientation("")
	require.NoError(t, err)
	assert.Equal(t, Portrait, o)
	_, err = ParseOrientation("sideways")
	assert.Error(t, err)
}

func TestSize(t *testing.T) {
	w, h := Size(PageA4, Portrait)
	assert.Equal(t, [2]float64{210, 297}, [2]float64{w, h})
	w, h = Size(PageLetter, Landscape)
	assert.Equal(t, [2]float64{279.4, 215.9}, [2]float64{w, h})
	w, h = Size("unknown", Portrait)
	assert.Equal(t, [2]float64{210, 297}, [2]float64{w, h})
}

// fixedWidth measures every rune as one unit.
type fixedWidth struct{}

func (fixedWidth) TextWidth(s string) float64 { return float64(len([]rune(s))) }

func TestWrapText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		width   float64
		want    []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"wraps at space", "hello world again", 11, []string{"hello world", "again"}},
		{"keeps newlines", "foo\n\nbar", 100, []string{"foo", "", "bar"}},
		{"splits long words", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"no width", "a b", 0, []string{"a b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.content, tt.width, fixedWidth{}))
		})
	}
}

func TestSlice(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 25))
	for y := 0; y < 25; y++ {
		src.Set(0, y, color.RGBA{R: uint8(y), A: 255})
	}
	pages := slice(src, 10)
	require.Len(t, pages, 3)
	for _, p := range pages {
		assert.Equal(t, image.Rect(0, 0, 10, 10), p.Bounds())
	}
	assert.Equal(t, color.RGBA{R: 12, A: 255}, pages[1].RGBAAt(0, 2))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, pages[2].RGBAAt(0, 7), "tail is padded white")

	assert.Len(t, slice(image.NewRGBA(image.Rect(0, 0, 4, 4)), 10), 1)
}

func TestLayout(t *testing.T) {
	fonts, err := loadFonts(nil)
	require.NoError(t, err)

	short, err := layout(context.Background(), export.HTML(sampleDocument(1)), DefaultViewportWidth, fonts, DataURLLoader)
	require.NoError(t, err)
	long, err := layout(context.Background(), export.HTML(sampleDocument(80)), DefaultViewportWidth, fonts, DataURLLoader)
	require.NoError(t, err)

	assert.Equal(t, "Weekly", short.title)
	assert.Greater(t, long.height, short.height)

	var texts []string
	for _, l := range short.lines {
		texts = append(texts, l.text)
	}
	joined := strings.Join(texts, "\n")
	assert.Contains(t, joined, "Weekly")
	assert.Contains(t, joined, "• Majlis program details for the evening session")
	assert.Contains(t, joined, "No image selected")
	assert.Contains(t, joined, "120kcal  ·  Allergens: Dairy")

	var dashed int
	for _, b := range short.boxes {
		if b.dashed {
			dashed++
		}
	}
	assert.Equal(t, 1, dashed, "empty image renders a dashed placeholder")
}

func TestDataURLLoader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))))
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	img, err := DataURLLoader.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	_, err = DataURLLoader.Load(context.Background(), "https://example.com/a.png")
	assert.ErrorIs(t, err, errRemoteImage)
}

func TestRasterize(t *testing.T) {
	r := New(Options{})
	assert.Equal(t, PageA4, r.Options().PageFormat)
	assert.Equal(t, DefaultTimeout, r.Options().Timeout)

	data, err := r.Render(context.Background(), sampleDocument(3))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, "Pune - Weekly.pdf", Filename(sampleDocument(1)))
}

func TestRasterize_Timeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data, err := New(Options{}).Render(ctx, sampleDocument(1))
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, data)
}
