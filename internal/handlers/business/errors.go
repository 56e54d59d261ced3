package business

import "fmt"

// ClaimError is a reason-coded failure surfaced to API callers. Validation
// errors are raised before any state mutation.
type ClaimError struct {
	Code    string
	Message string
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrInvalidRequest          = &ClaimError{Code: "InvalidRequest", Message: "请求参数不合法"}
	ErrNoEligibleGrants        = &ClaimError{Code: "NoEligibleGrants", Message: "没有可领取的锁仓份额"}
	ErrRequestExceedsAvailable = &ClaimError{Code: "RequestExceedsAvailable", Message: "请求金额超过当前可领取总额"}
	ErrClaimsDisabled          = &ClaimError{Code: "ClaimsDisabled", Message: "领取功能已关闭"}
	ErrPlanExpired             = &ClaimError{Code: "PlanExpired", Message: "结算计划已过期，请重新计算"}
	ErrPlanInvalid             = &ClaimError{Code: "PlanInvalid", Message: "结算计划校验失败"}
	ErrFeeNotConfirmed         = &ClaimError{Code: "FeeNotConfirmed", Message: "手续费交易未在限时内确认"}
	ErrFeeFailed               = &ClaimError{Code: "FeeFailed", Message: "手续费交易执行失败"}
	ErrTransferFailed          = &ClaimError{Code: "TransferFailed", Message: "转账交易失败"}
)
