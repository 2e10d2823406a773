// Package attendancehdl - Handler chấm công và giờ nghỉ.
package attendancehdl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	attendancedto "consult_crm/internal/api/attendance/dto"
	attendancemodels "consult_crm/internal/api/attendance/models"
	attendancesvc "consult_crm/internal/api/attendance/service"
	basehdl "consult_crm/internal/api/base/handler"
	"consult_crm/internal/common"
	"consult_crm/internal/tracker"

	"github.com/gofiber/fiber/v3"
)

// AttendanceHandler xử lý các request chấm công
type AttendanceHandler struct {
	AttendanceService *attendancesvc.AttendanceService
}

// NewAttendanceHandler tạo AttendanceHandler mới
func NewAttendanceHandler(svc *attendancesvc.AttendanceService) (*AttendanceHandler, error) {
	if svc == nil {
		return nil, fmt.Errorf("attendance service is nil")
	}
	return &AttendanceHandler{AttendanceService: svc}, nil
}

// HandleCheckIn xử lý POST /attendance/check-in
func (h *AttendanceHandler) HandleCheckIn(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		rec, err := h.AttendanceService.CheckIn(c.Context(), basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, rec, err)
	})
}

// HandleCheckOut xử lý POST /attendance/check-out
func (h *AttendanceHandler) HandleCheckOut(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		rec, err := h.AttendanceService.CheckOut(c.Context(), basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, rec, err)
	})
}

// HandleStartBreak xử lý POST /attendance/breaks/start
func (h *AttendanceHandler) HandleStartBreak(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input attendancedto.BreakStartInput
		if len(c.Body()) > 0 {
			if err := basehdl.ParseRequestBody(c, &input); err != nil {
				return basehdl.HandleResponse(c, nil, err)
			}
		}
		rec, err := h.AttendanceService.StartBreak(c.Context(), strings.TrimSpace(input.Reason), basehdl.CurrentActor(c))
		return basehdl.HandleResponseStatus(c, common.StatusCreated, rec, err)
	})
}

// HandleEndBreak xử lý POST /attendance/breaks/end
func (h *AttendanceHandler) HandleEndBreak(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		rec, err := h.AttendanceService.EndBreak(c.Context(), basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, rec, err)
	})
}

// queryDates đọc ?dates=a,b,c hoặc ?from=&to= (chỉ lấy thứ 2 đến thứ 6)
func queryDates(c fiber.Ctx) ([]string, error) {
	if raw := c.Query("dates"); raw != "" {
		dates := []string{}
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				dates = append(dates, d)
			}
		}
		return dates, nil
	}
	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" || toStr == "" {
		return nil, common.WithDetails(common.ErrRequiredField, "cần dates hoặc from và to")
	}
	from, err := time.Parse(tracker.DayLayout, fromStr)
	if err != nil {
		return nil, common.WithDetails(common.ErrInvalidFormat, "from phải có dạng YYYY-MM-DD")
	}
	to, err := time.Parse(tracker.DayLayout, toStr)
	if err != nil {
		return nil, common.WithDetails(common.ErrInvalidFormat, "to phải có dạng YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, common.WithDetails(common.ErrInvalidInput, "to phải sau from")
	}
	if to.Sub(from) > attendancesvc.MaxQueryDays*24*time.Hour {
		return nil, common.WithDetails(common.ErrInvalidInput, fmt.Sprintf("tối đa %d ngày", attendancesvc.MaxQueryDays))
	}
	return tracker.WorkingDays(from, to), nil
}

// HandleStats xử lý GET /attendance/:user?from=&to= hoặc ?dates=
func (h *AttendanceHandler) HandleStats(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		dates, err := queryDates(c)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		stats, err := h.AttendanceService.Stats(c.Context(), c.Params("user"), dates, basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, stats, err)
	})
}

// HandleListBreaks xử lý GET /attendance/:user/breaks?limit=
func (h *AttendanceHandler) HandleListBreaks(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		limit, _ := strconv.Atoi(c.Query("limit"))
		breaks, err := h.AttendanceService.Breaks(c.Context(), c.Params("user"), limit, basehdl.CurrentActor(c))
		if breaks == nil && err == nil {
			breaks = []attendancemodels.Break{}
		}
		return basehdl.HandleResponse(c, breaks, err)
	})
}
