package domain

import "errors"

var (
	// ErrAssetNotFound symbol 对应的资产不存在
	ErrAssetNotFound = errors.New("asset not found")
	// ErrOutOfRange 数值超出 DECIMAL(10,2) 可表示的范围
	ErrOutOfRange = errors.New("value out of storable range")
)
