package desk

import "errors"

// ErrShuttingDown 代表關閉程序已開始，佇列不再接受新的 session。
var ErrShuttingDown = errors.New("desk: shutting down")
