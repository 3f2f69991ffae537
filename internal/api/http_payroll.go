package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"payroll/internal/entity"
	"payroll/internal/entity/converter"
	"payroll/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MyPayrollHistory returns the caller's own records.
func (h *HTTPHandler) MyPayrollHistory(c *gin.Context) {
	h.writeHistory(c, CurrentUser(c).ID)
}

// PayrollHistory returns the records of any user.
func (h *HTTPHandler) PayrollHistory(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	h.writeHistory(c, id)
}

func (h *HTTPHandler) writeHistory(c *gin.Context, userID uint) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	records, err := h.payroll.History(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).WithField("user_id", userID).Error("failed to load payroll history")
		InternalError(c, "failed to load payroll history")
		return
	}
	c.JSON(http.StatusOK, entity.PayrollHistoryResponse{PayrollHistory: converter.PayrollHistoryToView(records)})
}

func (h *HTTPHandler) UpsertPayroll(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req entity.PayrollUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, bindingMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.payroll.Upsert(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMonthRequired):
			BadRequest(c, ErrCodeInvalidRequest, err.Error())
		case errors.Is(err, service.ErrInvalidStatus):
			BadRequest(c, ErrCodeInvalidStatus, "Invalid status")
		case errors.Is(err, service.ErrUserNotFound):
			NotFound(c, ErrCodeUserNotFound, "user not found")
		default:
			logrus.WithError(err).WithField("user_id", id).Error("failed to upsert payroll record")
			InternalError(c, "failed to save payroll record")
		}
		return
	}

	h.metrics.IncUpsert(record.Status)
	logrus.WithFields(logrus.Fields{
		"user_id":    id,
		"month":      record.Month,
		"status":     record.Status,
		"request_id": RequestID(c),
	}).Info("payroll record saved")

	view := converter.PayrollRecordToView(record)
	c.JSON(http.StatusOK, entity.PayrollUpsertResponse{Success: true, Record: &view})
}

// PayrollSlip renders the PDF slip of one month. Admins may fetch any user,
// everyone else only themselves.
func (h *HTTPHandler) PayrollSlip(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	if !CurrentUser(c).CanAccess(id) {
		Forbidden(c, "not allowed to view this slip")
		return
	}

	month := c.Query("month")
	if month == "" {
		MissingField(c, "month")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, record, err := h.payroll.Record(ctx, id, month)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMonthRequired):
			BadRequest(c, ErrCodeInvalidRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			NotFound(c, ErrCodeUserNotFound, "user not found")
		case errors.Is(err, service.ErrRecordNotFound):
			NotFound(c, ErrCodeRecordNotFound, "payroll record not found")
		default:
			logrus.WithError(err).WithField("user_id", id).Error("failed to load payroll record")
			InternalError(c, "failed to load payroll record")
		}
		return
	}

	pdf, err := h.slips.Render(user, record)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("failed to render payroll slip")
		InternalError(c, "failed to render slip")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", service.SlipFilename(user.Username, record.Month)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
