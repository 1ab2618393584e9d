package application

import "fmt"

// ErrorKind 用例失败的分类，由接口层映射为状态码
type ErrorKind int

const (
	// KindNotFound 资产不存在
	KindNotFound ErrorKind = iota + 1
	// KindValidation 请求参数不合法
	KindValidation
	// KindWriteFailure 订单未能写入
	KindWriteFailure
	// KindInternal 存储等基础设施故障
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindWriteFailure:
		return "write_failure"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// 返回给调用方的固定文案
const (
	MsgAssetNotFound       = "Asset not found"
	MsgCouldNotCreateOrder = "Could not create order"
	MsgOrderCreated        = "Order created successfully"
	MsgInternal            = "Internal server error"
)

// Error 用例的失败结果
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}
