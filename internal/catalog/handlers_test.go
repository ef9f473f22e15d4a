package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ngepos/internal/catalog"
)

type productsResponse struct {
	Data []catalog.Product `json:"data"`
}

type productResponse struct {
	Data catalog.Product `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestCatalogHandlers(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceConfig{Provider: catalog.NewStatic(0)})
	require.NoError(t, err)
	handler := catalog.NewHandler(catalog.HandlerConfig{Service: svc})

	t.Run("products list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		rec := httptest.NewRecorder()
		handler.Products(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "8", rec.Header().Get("X-Total-Count"))

		var resp productsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 8)
		require.Equal(t, "Nasi Goreng Spesial", resp.Data[0].Name)
		require.Equal(t, int64(25000), resp.Data[0].Price)
	})

	t.Run("products search", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=AYAM", nil)
		rec := httptest.NewRecorder()
		handler.Products(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp productsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		names := make([]string, 0, len(resp.Data))
		for _, p := range resp.Data {
			names = append(names, p.Name)
		}
		require.ElementsMatch(t, []string{"Mie Ayam Bakso", "Ayam Geprek", "Sate Ayam"}, names)
	})

	t.Run("product detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Product(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/products/7", nil), "7"))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp productResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Rendang Daging", resp.Data.Name)
	})

	t.Run("product missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Product(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/products/99", nil), "99"))
		require.Equal(t, http.StatusNotFound, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("product bad id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Product(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/products/abc", nil), "abc"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func withID(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}
