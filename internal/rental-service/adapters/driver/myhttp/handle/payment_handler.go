package handle

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"car-hire/internal/mylogger"
	"car-hire/internal/rental-service/core/domain/dto"
	"car-hire/internal/rental-service/core/ports"
)

// webhook bodies are small; anything larger is not the provider
const maxCallbackBody = 1 << 20

type PaymentHandler struct {
	paymentService ports.IPaymentService
	log            mylogger.Logger
	wg             *sync.WaitGroup
}

// NewPaymentHandler takes the server's WaitGroup so in-flight callback
// reconciliation is drained before shutdown.
func NewPaymentHandler(ps ports.IPaymentService, log mylogger.Logger, wg *sync.WaitGroup) *PaymentHandler {
	return &PaymentHandler{
		paymentService: ps,
		log:            log,
		wg:             wg,
	}
}

func (ph *PaymentHandler) InitiateDeposit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.DepositInitiateRequestDto{}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := ph.paymentService.InitiateDeposit(req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

// ProviderCallback acknowledges every delivery with 200 {ok:true} before any
// processing happens: the provider retries on a failed acknowledgment, not on
// a failed business outcome.
func (ph *PaymentHandler) ProviderCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
		if err != nil {
			ph.log.Action("ProviderCallback").Warn("cannot read callback body", "err", err.Error())
			body = nil
		}

		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})

		if len(body) == 0 {
			return
		}
		ph.wg.Add(1)
		go func() {
			defer ph.wg.Done()
			ph.paymentService.HandleProviderCallback(body)
		}()
	}
}
