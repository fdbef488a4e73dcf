package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）、消息（Message）、模块（Module）
//   - 支持 errors.Is / errors.As 与 IsXXX 检查函数
//
// 使用场景：
//   - 查询向量校验：INVALID_INPUT, DEGENERATE_VECTOR
//   - 参考表缺列：SCHEMA_MISMATCH
//   - 相似度矩阵缺 key：KEY_NOT_FOUND
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED, UNAVAILABLE
type DomainError struct {
	Code    string // 错误代码（如 "KEY_NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "recall", "dataset"）
	Cause   error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is 让 errors.Is 可以按 Module+Code 匹配哨兵错误。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Module == "" || e.Module == t.Module)
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// Errorf 创建带格式化消息的领域错误。
func Errorf(module, code, format string, args ...any) *DomainError {
	return NewDomainError(module, code, fmt.Sprintf(format, args...))
}

// WrapDomainError 用领域错误包装底层错误。
func WrapDomainError(module, code, message string, cause error) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message, Cause: cause}
}

// IsDomainError 检查错误链中是否有 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"         // 资源不存在
	ErrorCodeNotSupported     = "NOT_SUPPORTED"     // 操作不支持
	ErrorCodeUnavailable      = "UNAVAILABLE"       // 服务不可用
	ErrorCodeInvalidInput     = "INVALID_INPUT"     // 输入无效（人格向量不完整/非有限值）
	ErrorCodeInternalError    = "INTERNAL_ERROR"    // 内部错误
	ErrorCodeSchemaMismatch   = "SCHEMA_MISMATCH"   // 参考表缺少所需列
	ErrorCodeKeyNotFound      = "KEY_NOT_FOUND"     // 相似度矩阵中没有该物品
	ErrorCodeDegenerateVector = "DEGENERATE_VECTOR" // 零向量，余弦距离无定义
)

// 模块名称常量
const (
	ModuleStore      = "store"
	ModuleSimilarity = "similarity"
	ModuleRecall     = "recall"
	ModuleDataset    = "dataset"
	ModuleEngine     = "engine"
	ModuleCore       = "core"
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsSchemaMismatch 检查错误是否为 SCHEMA_MISMATCH
func IsSchemaMismatch(err error) bool { return hasCode(err, ErrorCodeSchemaMismatch) }

// IsKeyNotFound 检查错误是否为 KEY_NOT_FOUND
func IsKeyNotFound(err error) bool { return hasCode(err, ErrorCodeKeyNotFound) }

// IsDegenerateVector 检查错误是否为 DEGENERATE_VECTOR
func IsDegenerateVector(err error) bool { return hasCode(err, ErrorCodeDegenerateVector) }
