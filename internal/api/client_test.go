package api

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"coleta/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Lâmpadas","image_url":"http://x/lampadas.svg"},{"id":2,"title":"Pilhas e Baterias","image_url":"http://x/baterias.svg"}]`))
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL).FetchItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Item{
		{ID: 1, Title: "Lâmpadas", ImageURL: "http://x/lampadas.svg"},
		{ID: 2, Title: "Pilhas e Baterias", ImageURL: "http://x/baterias.svg"},
	}, items)
}

func TestQueryPointsSendsRegionAndItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/points", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "MG", q.Get("uf"))
		assert.Equal(t, "Uberlandia", q.Get("city"))
		assert.Equal(t, "1,2,3,4,5,6", q.Get("items"))
		_, _ = w.Write([]byte(`[{"id":7,"name":"Mercado","image":"a.jpg","image_url":"http://x/a.jpg","latitude":-18.91,"longitude":"-48.27"}]`))
	}))
	defer srv.Close()

	region := model.RegionQuery{UF: "MG", City: "Uberlandia"}
	points, err := NewClient(srv.URL).QueryPoints(context.Background(), region, []int64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, int64(7), points[0].ID)
	assert.Equal(t, "Mercado", points[0].Name)
	assert.InDelta(t, -18.91, points[0].Latitude, 1e-9)
	assert.InDelta(t, -48.27, points[0].Longitude, 1e-9)
}

func TestFetchDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/points/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"point":{"image":"a.jpg","name":"Mercado","image_url":"http://x/a.jpg","email":"m@x.com","whatsapp":"5534999","city":"Uberlandia","uf":"MG"},"items":[{"title":"Papéis"},{"title":"Vidros"}]}`))
	}))
	defer srv.Close()

	detail, err := NewClient(srv.URL).FetchDetail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), detail.ID)
	assert.Equal(t, "Mercado", detail.Name)
	assert.Equal(t, "m@x.com", detail.Email)
	assert.Equal(t, "5534999", detail.WhatsApp)
	assert.Equal(t, []string{"Papéis", "Vidros"}, detail.ItemTitles())
}

func TestFetchDetailWithoutPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Point not found."}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchDetail(context.Background(), 9)
	require.Error(t, err)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchItems(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "/items", statusErr.Path)
}

func TestCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL).QueryPoints(ctx, model.RegionQuery{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 3))
		img.Set(1, 1, color.RGBA{R: 52, G: 203, B: 121, A: 255})
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer srv.Close()

	img, err := NewClient(srv.URL).FetchImage(context.Background(), srv.URL+"/uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}

func TestNewClientDefaults(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL())
	assert.Equal(t, "http://api.local", NewClient("http://api.local/").BaseURL())
}
