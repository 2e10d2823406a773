package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	basesvc "consult_crm/internal/api/base/service"
	"consult_crm/internal/common"
	"consult_crm/internal/global"
	"consult_crm/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandlerWrapper bọc handler với recover để luôn trả response cho client, kể cả khi panic.
func SafeHandlerWrapper(c fiber.Ctx, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithField("stack", string(debug.Stack())).Errorf("Panic trong handler: %v", r)
			err = HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return fn()
}

// HandleResponse chuẩn hóa response trả về cho client.
// data được trả trong envelope success khi err == nil.
func HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	return HandleResponseStatus(c, common.StatusOK, data, err)
}

// HandleResponseStatus giống HandleResponse nhưng cho phép chọn status thành công (ví dụ 201)
func HandleResponseStatus(c fiber.Ctx, status int, data interface{}, err error) error {
	if err != nil {
		var customErr *common.Error
		if errors.As(err, &customErr) {
			if customErr.StatusCode >= common.StatusInternalServerError {
				logger.WithRequest(c).WithError(err).Error("Request thất bại")
			}
			return JSONResponse(c, customErr.StatusCode, fiber.Map{
				"code":    customErr.Code.Code,
				"message": customErr.Message,
				"details": customErr.Details,
				"status":  "error",
			})
		}
		// Nếu không phải custom error, trả về internal server error
		logger.WithRequest(c).WithError(err).Error("Request thất bại")
		return JSONResponse(c, common.StatusInternalServerError, fiber.Map{
			"code":    common.ErrCodeInternalServer.Code,
			"message": err.Error(),
			"status":  "error",
		})
	}

	message := common.MsgSuccess
	if status == common.StatusCreated {
		message = common.MsgCreated
	}
	return JSONResponse(c, status, fiber.Map{
		"code":    status,
		"message": message,
		"data":    data,
		"status":  "success",
	})
}

// ParseRequestBody parse body JSON vào input rồi validate theo struct tag
func ParseRequestBody(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().Body(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
			common.StatusBadRequest,
			nil,
		)
	}
	if err := global.ValidateStruct(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationInput,
			common.MsgValidationError,
			common.StatusBadRequest,
			err.Error(),
		)
	}
	return nil
}

// CurrentActor trả về user name và cờ admin do middleware auth gắn vào context
func CurrentActor(c fiber.Ctx) basesvc.Actor {
	name, _ := c.Locals("user_name").(string)
	isAdmin, _ := c.Locals("is_admin").(bool)
	return basesvc.Actor{Name: name, IsAdmin: isAdmin}
}
