package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）、模块（Module）和消息（Message）
//   - 可携带底层错误（Err），支持 errors.Is / errors.As
//
// 打分链路中的错误都是不可恢复的：同一批次不会重试，也不会输出部分结果。
// 调用方应视为“本批次无法重排”，跳过重排或直接返回失败。
type DomainError struct {
	Code    string // 错误代码（如 "CALIBRATION", "CAPACITY"）
	Message string // 错误消息
	Module  string // 模块名称（如 "feature", "dataset", "scoring"）
	Err     error  // 底层错误，可为空
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Module, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Module, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// Errorf 按格式化消息创建领域错误。
func Errorf(module, code, format string, args ...any) *DomainError {
	return NewDomainError(module, code, fmt.Sprintf(format, args...))
}

// WrapError 用领域错误包装底层错误；err 为 nil 时返回 nil。
func WrapError(module, code, message string, err error) error {
	if err == nil {
		return nil
	}
	return &DomainError{Module: module, Code: code, Message: message, Err: err}
}

// GetDomainError 沿错误链查找 DomainError，找不到返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// IsDomainError 检查错误链中是否包含 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeNotSupported = "NOT_SUPPORTED" // 操作不支持
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 服务不可用
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效

	// ErrorCodeConfig 模型或统计文件缺失、不可读、格式错误（构造期致命错误）
	ErrorCodeConfig = "CONFIG"
	// ErrorCodeCalibration 原始值超出对数变换定义域，说明统计信息过期或不匹配
	ErrorCodeCalibration = "CALIBRATION"
	// ErrorCodeCapacity 单个特征的不同量化值超过最大分桶宽度
	ErrorCodeCapacity = "CAPACITY"
	// ErrorCodeConsistency 内部不变量被破坏（样本数与输出长度不一致），一定是 bug
	ErrorCodeConsistency = "CONSISTENCY"
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleFeature = "feature" // 特征模块
	ModuleDataset = "dataset" // 数据集构建
	ModuleModel   = "model"   // 树模型
	ModuleScoring = "scoring" // 打分链路
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

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsConfig 检查错误是否为配置错误
func IsConfig(err error) bool { return hasCode(err, ErrorCodeConfig) }

// IsCalibration 检查错误是否为校准定义域错误
func IsCalibration(err error) bool { return hasCode(err, ErrorCodeCalibration) }

// IsCapacity 检查错误是否为分桶容量错误
func IsCapacity(err error) bool { return hasCode(err, ErrorCodeCapacity) }

// IsConsistency 检查错误是否为一致性错误
func IsConsistency(err error) bool { return hasCode(err, ErrorCodeConsistency) }
