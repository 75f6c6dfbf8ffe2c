package handle

import (
	"encoding/json"
	"net/http"

	"car-hire/internal/mylogger"
	"car-hire/internal/rental-service/core/domain/dto"
	"car-hire/internal/rental-service/core/ports"
)

type CatalogHandler struct {
	catalogService ports.ICatalogService
	log            mylogger.Logger
}

func NewCatalogHandler(cs ports.ICatalogService, log mylogger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: cs,
		log:            log,
	}
}

func (ch *CatalogHandler) ListRatePlans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := ch.catalogService.ListRatePlans()
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (ch *CatalogHandler) CreateRatePlan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.RatePlanCreateRequestDto{}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := ch.catalogService.CreateRatePlan(req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

func (ch *CatalogHandler) ToggleRatePlan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ratePlanId := r.PathValue("rate_plan_id")

		res, err := ch.catalogService.ToggleRatePlan(ratePlanId)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (ch *CatalogHandler) ListVehicles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := ch.catalogService.ListVehicles()
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (ch *CatalogHandler) CreateVehicle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.VehicleCreateRequestDto{}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := ch.catalogService.CreateVehicle(req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}
