package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"car-hire/internal/mylogger"
	"car-hire/internal/rental-service/core/domain/dto"
	"car-hire/internal/rental-service/core/domain/model"
	"car-hire/internal/rental-service/core/myerrors"
	"car-hire/internal/rental-service/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultKmIncludedPerDay = 150
	MaxPlateLen             = 16
)

type CatalogService struct {
	mylog       mylogger.Logger
	CatalogRepo ports.ICatalogRepo
	ctx         context.Context
}

func NewCatalogService(ctx context.Context, log mylogger.Logger, catalogRepo ports.ICatalogRepo) ports.ICatalogService {
	return &CatalogService{
		ctx:         ctx,
		mylog:       log,
		CatalogRepo: catalogRepo,
	}
}

func (cs *CatalogService) CreateRatePlan(req dto.RatePlanCreateRequestDto) (dto.RatePlanResponseDto, error) {
	log := cs.mylog.Action("CreateRatePlan")

	rp, err := buildRatePlan(req)
	if err != nil {
		return dto.RatePlanResponseDto{}, err
	}

	ctx, cancel := context.WithTimeout(cs.ctx, time.Second*15)
	defer cancel()

	if err := cs.CatalogRepo.CreateRatePlan(ctx, rp); err != nil {
		log.Error("cannot create rate plan", err, "name", rp.Name)
		return dto.RatePlanResponseDto{}, err
	}

	log.Info("rate plan created", "rate_plan_id", rp.ID, "name", rp.Name)
	return ratePlanDto(rp), nil
}

func (cs *CatalogService) ListRatePlans() ([]dto.RatePlanResponseDto, error) {
	ctx, cancel := context.WithTimeout(cs.ctx, time.Second*15)
	defer cancel()

	plans, err := cs.CatalogRepo.ListRatePlans(ctx)
	if err != nil {
		cs.mylog.Action("ListRatePlans").Error("cannot list rate plans", err)
		return nil, err
	}

	res := make([]dto.RatePlanResponseDto, 0, len(plans))
	for _, rp := range plans {
		res = append(res, ratePlanDto(rp))
	}
	return res, nil
}

func (cs *CatalogService) ToggleRatePlan(ratePlanId string) (dto.RatePlanToggleResponseDto, error) {
	log := cs.mylog.Action("ToggleRatePlan")

	if ratePlanId == "" {
		return dto.RatePlanToggleResponseDto{}, fmt.Errorf("rate plan id is required: %w", myerrors.ErrEmptyField)
	}

	ctx, cancel := context.WithTimeout(cs.ctx, time.Second*15)
	defer cancel()

	active, err := cs.CatalogRepo.ToggleRatePlan(ctx, ratePlanId)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return dto.RatePlanToggleResponseDto{}, myerrors.ErrNotFound
		}
		log.Error("cannot toggle rate plan", err, "rate_plan_id", ratePlanId)
		return dto.RatePlanToggleResponseDto{}, err
	}

	log.Info("rate plan toggled", "rate_plan_id", ratePlanId, "active", active)
	return dto.RatePlanToggleResponseDto{Id: ratePlanId, Active: active}, nil
}

func (cs *CatalogService) CreateVehicle(req dto.VehicleCreateRequestDto) (dto.VehicleResponseDto, error) {
	log := cs.mylog.Action("CreateVehicle")

	v, err := buildVehicle(req)
	if err != nil {
		return dto.VehicleResponseDto{}, err
	}

	ctx, cancel := context.WithTimeout(cs.ctx, time.Second*15)
	defer cancel()

	if err := cs.CatalogRepo.CreateVehicle(ctx, v); err != nil {
		if errors.Is(err, myerrors.ErrPlateRegistered) {
			return dto.VehicleResponseDto{}, myerrors.ErrPlateRegistered
		}
		log.Error("cannot create vehicle", err, "plate", v.Plate)
		return dto.VehicleResponseDto{}, err
	}

	log.Info("vehicle created", "vehicle_id", v.ID, "plate", v.Plate)
	return vehicleDto(v), nil
}

func (cs *CatalogService) ListVehicles() ([]dto.VehicleResponseDto, error) {
	ctx, cancel := context.WithTimeout(cs.ctx, time.Second*15)
	defer cancel()

	vehicles, err := cs.CatalogRepo.ListVehicles(ctx)
	if err != nil {
		cs.mylog.Action("ListVehicles").Error("cannot list vehicles", err)
		return nil, err
	}

	res := make([]dto.VehicleResponseDto, 0, len(vehicles))
	for _, v := range vehicles {
		res = append(res, vehicleDto(v))
	}
	return res, nil
}

var (
	minWeekendMultiplier = decimal.NewFromFloat(0.5)
	maxWeekendMultiplier = decimal.NewFromInt(5)
)

func buildRatePlan(req dto.RatePlanCreateRequestDto) (model.RatePlan, error) {
	if req.Name == nil || len(strings.TrimSpace(*req.Name)) < 2 || len(*req.Name) > 60 {
		return model.RatePlan{}, fmt.Errorf("name must be 2..60 characters: %w", myerrors.ErrEmptyField)
	}
	if req.DailyRate == nil || *req.DailyRate <= 0 {
		return model.RatePlan{}, fmt.Errorf("daily_rate must be positive: %w", myerrors.ErrInvalidAmount)
	}
	if req.WeeklyRate != nil && *req.WeeklyRate <= 0 {
		return model.RatePlan{}, fmt.Errorf("weekly_rate must be positive: %w", myerrors.ErrInvalidAmount)
	}
	if req.DepositAmount == nil || *req.DepositAmount < 0 {
		return model.RatePlan{}, fmt.Errorf("deposit_amount must be non-negative: %w", myerrors.ErrInvalidAmount)
	}

	rp := model.RatePlan{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(*req.Name),
		DailyRate:         *req.DailyRate,
		DepositAmount:     *req.DepositAmount,
		KmIncludedPerDay:  DefaultKmIncludedPerDay,
		WeekendMultiplier: decimal.NewFromInt(1),
		Active:            true,
	}
	if req.WeeklyRate != nil {
		rp.WeeklyRate = *req.WeeklyRate
	}
	if req.KmIncludedPerDay != nil {
		if *req.KmIncludedPerDay <= 0 {
			return model.RatePlan{}, fmt.Errorf("km_included_per_day must be positive: %w", myerrors.ErrInvalidAmount)
		}
		rp.KmIncludedPerDay = *req.KmIncludedPerDay
	}
	if req.ExtraKmRate != nil {
		if *req.ExtraKmRate < 0 {
			return model.RatePlan{}, fmt.Errorf("extra_km_rate must be non-negative: %w", myerrors.ErrInvalidAmount)
		}
		rp.ExtraKmRate = *req.ExtraKmRate
	}
	if req.WeekendMultiplier != nil {
		m := decimal.NewFromFloat(*req.WeekendMultiplier)
		if m.LessThan(minWeekendMultiplier) || m.GreaterThan(maxWeekendMultiplier) {
			return model.RatePlan{}, fmt.Errorf("weekend_multiplier must be within 0.5..5: %w", myerrors.ErrInvalidAmount)
		}
		rp.WeekendMultiplier = m.Round(2)
	}
	if req.Active != nil {
		rp.Active = *req.Active
	}
	return rp, nil
}

func buildVehicle(req dto.VehicleCreateRequestDto) (model.Vehicle, error) {
	if req.Plate == nil || strings.TrimSpace(*req.Plate) == "" || len(*req.Plate) > MaxPlateLen {
		return model.Vehicle{}, fmt.Errorf("plate must be 1..%d characters: %w", MaxPlateLen, myerrors.ErrEmptyField)
	}

	v := model.Vehicle{
		ID:     uuid.NewString(),
		Plate:  strings.ToUpper(strings.TrimSpace(*req.Plate)),
		Status: model.VehicleAvailable,
	}
	if req.Make != nil {
		v.Make = *req.Make
	}
	if req.Model != nil {
		v.Model = *req.Model
	}
	if req.Year != nil {
		v.Year = *req.Year
	}
	if req.Color != nil {
		v.Color = *req.Color
	}
	if req.OdoKm != nil {
		if *req.OdoKm < 0 {
			return model.Vehicle{}, fmt.Errorf("odo_km must be non-negative: %w", myerrors.ErrInvalidAmount)
		}
		v.OdoKm = *req.OdoKm
	}
	return v, nil
}

func ratePlanDto(rp model.RatePlan) dto.RatePlanResponseDto {
	return dto.RatePlanResponseDto{
		Id:                rp.ID,
		Name:              rp.Name,
		DailyRate:         rp.DailyRate,
		WeeklyRate:        rp.WeeklyRate,
		DepositAmount:     rp.DepositAmount,
		KmIncludedPerDay:  rp.KmIncludedPerDay,
		ExtraKmRate:       rp.ExtraKmRate,
		WeekendMultiplier: rp.WeekendMultiplier.StringFixed(2),
		Active:            rp.Active,
	}
}

func vehicleDto(v model.Vehicle) dto.VehicleResponseDto {
	return dto.VehicleResponseDto{
		Id:     v.ID,
		Plate:  v.Plate,
		Make:   v.Make,
		Model:  v.Model,
		Year:   v.Year,
		Color:  v.Color,
		OdoKm:  v.OdoKm,
		Status: string(v.Status),
	}
}
