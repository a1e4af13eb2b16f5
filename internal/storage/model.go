// internal/storage/model.go
//
// 定義「資料持久化層 (storage layer)」的結構模型。
// 帳戶表在關閉時整份寫出，啟動時整份讀回；此層不關心鎖或商業邏輯。

package storage

import "time"

// Format 為狀態檔格式。
type Format string

const (
	// FormatBinary 為預設格式：依帳戶編號順序排列的固定寬度記錄，無標頭、無校驗碼。
	FormatBinary Format = "binary"
	// FormatJSON 為人類可讀的快照，帶有中繼資料。
	FormatJSON Format = "json"
)

// RecordSize 為一筆二進位記錄的位元組數：int32 編號 + int64 餘額（分），little-endian。
const RecordSize = 12

// Record 為單一帳戶在儲存層的序列化格式。
type Record struct {
	ID      int32 `json:"id"`
	Balance int64 `json:"balance"` // 以最小貨幣單位儲存
}

// Meta 為 JSON 快照的中繼資料。
type Meta struct {
	Storage   string    `json:"storage"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// Snapshot 為 JSON 格式下帳戶表的完整快照。
type Snapshot struct {
	Meta     Meta     `json:"_meta"`
	Accounts []Record `json:"accounts"`
}
