package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ikarus3d/go-backend/internal/usecase"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// sampleProducts
//
//	@Summary		Выборка продуктов
//	@Description	Возвращает небольшую выборку продуктов каталога для демонстрации
//	@Tags			products
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Выборка продуктов"
//	@Router			/products/sample [get]
func (p *ProductHandler) sampleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.productUsecase.SampleProducts(r.Context())
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	items := make([]productResponse, 0, len(products))
	for _, pr := range products {
		items = append(items, toProductResponse(pr))
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"products": items,
		"total":    len(items),
	})
}

// getProduct
//
//	@Summary		Продукт по идентификатору
//	@Tags			products
//	@Produce		json
//	@Param			product_id	path		string			true	"Идентификатор продукта"
//	@Success		200			{object}	productResponse	"Продукт"
//	@Failure		404			{object}	ErrorResponse	"Продукт не найден"
//	@Router			/products/{product_id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	product, err := p.productUsecase.GetProduct(r.Context(), productID)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(*product))
}

// generateDescription
//
//	@Summary		Генерация описания продукта
//	@Description	Генерирует маркетинговое описание по атрибутам продукта. Результат кэшируется.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			product_id	path		string					true	"Идентификатор продукта"
//	@Param			request		body		descriptionAttrsBody	false	"Переопределение атрибутов"
//	@Success		200			{object}	map[string]interface{}	"Сгенерированное описание"
//	@Failure		404			{object}	ErrorResponse			"Продукт не найден"
//	@Failure		503			{object}	ErrorResponse			"Генеративный сервис недоступен"
//	@Router			/products/{product_id}/generate-description [post]
func (p *ProductHandler) generateDescription(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	// Тело запроса опционально. Без него атрибуты берутся из каталога.
	var attrsBody *descriptionAttrsBody
	if err := json.NewDecoder(r.Body).Decode(&attrsBody); err != nil && !errors.Is(err, io.EOF) {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	res, err := p.productUsecase.GenerateDescription(r.Context(), usecase.NewGenerateDescriptionReq(productID, attrsBody.toUseCase()))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"product_id":           res.ProductID,
		"ai_description":       res.AIDescription,
		"original_description": res.OriginalDescription,
		"cached":               res.Cached,
		"generated_by":         res.GeneratedBy,
	})
}
