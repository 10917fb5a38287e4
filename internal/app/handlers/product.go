package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/service"
)

const maxUploadSize = 32 << 20

// parseProductForm разбирает форму товара: multipart при загрузке файла,
// обычная urlencoded — без него.
func parseProductForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadSize)
	}
	return r.ParseForm()
}

// formImage достает загруженное изображение; файлы с типом, отличным
// от image/*, молча игнорируются.
func formImage(r *http.Request) (*service.ImageUpload, func(), error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		_ = file.Close()
		return nil, nil, nil
	}
	closeFn := func() { _ = file.Close() }
	return &service.ImageUpload{
		Ext:  filepath.Ext(header.Filename),
		Data: file,
	}, closeFn, nil
}

// formPrice повторяет семантику Number(price) || 0: нечисловое значение дает ноль
func formPrice(raw string) int {
	price, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return price
}

// CreateProductHandler добавляет товар (multipart-форма, только администратор)
func CreateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		if err := parseProductForm(r); err != nil {
			logger.Error("invalid request: form parsing error", slog.Any("error", err))
			writeError(w, logger, apperr.Validation("Received not valid data"))
			return
		}
		image, closeImage, err := formImage(r)
		if err != nil {
			logger.Error("invalid request: image upload error", slog.Any("error", err))
			writeError(w, logger, apperr.Validation("Received not valid data"))
			return
		}
		if closeImage != nil {
			defer closeImage()
		}

		in := service.CreateProductInput{
			Name:        r.FormValue("name"),
			Alias:       r.FormValue("alias"),
			Type:        r.FormValue("type"),
			Country:     r.FormValue("country"),
			Price:       formPrice(r.FormValue("price")),
			Description: r.FormValue("description"),
		}
		product, err := productService.Create(r.Context(), in, image)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}

// UpdateProductHandler частично обновляет товар; алиас не трогается
func UpdateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, apperr.Validation("Not valid ID"))
			return
		}
		if err := parseProductForm(r); err != nil {
			logger.Error("invalid request: form parsing error", slog.Any("error", err))
			writeError(w, logger, apperr.Validation("Received not valid data"))
			return
		}
		image, closeImage, err := formImage(r)
		if err != nil {
			logger.Error("invalid request: image upload error", slog.Any("error", err))
			writeError(w, logger, apperr.Validation("Received not valid data"))
			return
		}
		if closeImage != nil {
			defer closeImage()
		}

		in := service.UpdateProductInput{
			Name:        r.FormValue("name"),
			Type:        r.FormValue("type"),
			Country:     r.FormValue("country"),
			Description: r.FormValue("description"),
			ClearImage:  r.FormValue("clearImg") != "",
		}
		// цена меняется только если поле присутствует в форме
		if rawPrice, ok := formValuePresent(r, "price"); ok {
			price := formPrice(rawPrice)
			in.Price = &price
		}

		product, err := productService.Update(r.Context(), id, in, image)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}

func formValuePresent(r *http.Request, key string) (string, bool) {
	if r.MultipartForm != nil {
		if vals, ok := r.MultipartForm.Value[key]; ok && len(vals) > 0 {
			return vals[0], true
		}
	}
	if vals, ok := r.Form[key]; ok && len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}

func DeleteProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, apperr.Validation("Not valid ID"))
			return
		}
		if err := productService.Delete(r.Context(), id); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]string{"deleted": "deleted"})
	}
}

// ListProductsHandler отдает страницу каталога с фильтрами из query-параметров
func ListProductsHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		// skip — список идентификаторов через запятую, нечисловые отбрасываются
		var skip []int64
		for _, part := range strings.Split(q.Get("skip"), ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
				skip = append(skip, id)
			}
		}

		in := service.ListProductsInput{
			Type:    q.Get("type"),
			Country: q.Get("country"),
			Page:    page,
			Limit:   limit,
			Skip:    skip,
			Random:  q.Get("random") != "",
		}
		pageData, err := productService.List(r.Context(), in)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, pageData)
	}
}

func GetProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, apperr.NotFound("Not valid ID"))
			return
		}
		product, err := productService.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}

func GetProductByAliasHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductByAliasHandler"
		logger := log.With(slog.String("op", op))

		product, err := productService.GetByAlias(r.Context(), chi.URLParam(r, "alias"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}
