// internal/storage/jsonstore.go
//
// 提供狀態檔的載入與保存。
// 保存採「原子寫入」策略：先寫入 .tmp 檔，再以 rename() 取代原檔，
// 寫入中斷時原檔不會損壞。兩種格式（binary / json）共用此流程。

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// Load 讀取狀態檔，最多回傳 n 筆記錄。
// 檔案不存在時回傳 (nil, nil)，呼叫端以預設帳戶表啟動。
func Load(path string, format Format, n int) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	switch format {
	case FormatBinary, "":
		return ReadRecords(f, n)
	case FormatJSON:
		snap, err := decodeSnapshot(f)
		if err != nil {
			return nil, err
		}
		if n > 0 && len(snap.Accounts) > n {
			snap.Accounts = snap.Accounts[:n]
		}
		return snap.Accounts, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Save 將記錄以指定格式寫入 path（經由 path+".tmp" 原子替換）。
func Save(path string, format Format, recs []Record) error {
	var encode func(io.Writer) error
	switch format {
	case FormatBinary, "":
		encode = func(w io.Writer) error { return WriteRecords(w, recs) }
	case FormatJSON:
		encode = func(w io.Writer) error { return encodeSnapshot(w, recs) }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func decodeSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	err := json.NewDecoder(r).Decode(&snap)
	return snap, err
}

// encodeSnapshot 使用縮排格式輸出，方便人工檢視。
func encodeSnapshot(w io.Writer, recs []Record) error {
	snap := Snapshot{
		Meta: Meta{
			Storage:   "json_snapshot",
			Version:   1,
			Timestamp: time.Now(),
		},
		Accounts: recs,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
