package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

// Response общий конверт ответа: ровно одно из data/error не null.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Error   *ErrorInfo `json:"error"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PaginatedResponse struct {
	Success    bool            `json:"success"`
	Data       any             `json:"data"`
	Error      *ErrorInfo      `json:"error"`
	Pagination pagination.Page `json:"pagination"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// Deleted ответ на удаление: {"success":true,"data":{"id":...}}.
func Deleted(c *gin.Context, id any) {
	Success(c, gin.H{"id": id})
}

func Paginated(c *gin.Context, data any, page pagination.Page) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Success:    true,
		Data:       data,
		Pagination: page,
	})
}

// Error отдаёт AppError с его статусом. Внутренние ошибки пишутся в лог
// вместе с причиной, клиент видит только Message.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Wrap(err, apperror.ErrCodeInternal, "Something went wrong")
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.WithRequest(c).WithError(err).Error("[HTTP] внутренняя ошибка")
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    string(appErr.Code),
			Message: appErr.Message,
		},
	})
}

// BindError ошибка разбора тела запроса: первая ошибка валидатора.
func BindError(c *gin.Context, err error) {
	Error(c, apperror.Validation(validation.FirstError(err)))
}

func BadRequest(c *gin.Context, message string) {
	Error(c, apperror.New(apperror.ErrCodeBadRequest, message))
}

func Unauthorized(c *gin.Context) {
	Error(c, apperror.ErrUnauthorized)
}

func Forbidden(c *gin.Context) {
	Error(c, apperror.ErrForbidden)
}

func TooManyRequests(c *gin.Context) {
	Error(c, apperror.New(apperror.ErrCodeRateLimited, "Too many requests, please try again later"))
}
