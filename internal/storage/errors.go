package storage

import "errors"

// ErrUnknownFormat 代表設定了未支援的狀態檔格式。
var ErrUnknownFormat = errors.New("unknown state format")
