// internal/storage/binstore.go
//
// 二進位狀態檔：每個帳戶一筆固定寬度記錄，依編號順序連續寫出。
// 讀取時遇到檔案過短（或最後一筆不完整）即提前停止，其餘帳戶維持預設值；
// 此格式可向前相容，但不具損毀偵測能力。

package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// WriteRecords 依序寫出所有記錄。
func WriteRecords(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		if err := binary.Write(bw, binary.LittleEndian, r); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadRecords 最多讀回 limit 筆記錄；limit <= 0 表示讀到檔尾。
// 檔案過短不是錯誤：回傳已完整讀到的記錄。
func ReadRecords(r io.Reader, limit int) ([]Record, error) {
	br := bufio.NewReader(r)
	var out []Record
	for limit <= 0 || len(out) < limit {
		var rec Record
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}
