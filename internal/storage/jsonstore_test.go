// internal/storage/jsonstore_test.go
//
// 測試目標：驗證狀態檔在寫入與讀取之間沒有遺失或格式錯誤，
// 以及檔案缺失、過短時的退回行為。

package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []Record {
	return []Record{
		{ID: 0, Balance: 100000},
		{ID: 1, Balance: 60000},
		{ID: 2, Balance: 140000},
	}
}

// TestBinarySaveLoad 驗證二進位格式的寫入與讀回。
func TestBinarySaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.dat")

	require.NoError(t, Save(path, FormatBinary, sample()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 3*RecordSize, info.Size(), "no header, fixed-width records")

	got, err := Load(path, FormatBinary, 3)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestBinaryLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, []Record{{ID: 1, Balance: 2}}))
	assert.Equal(t, []byte{1, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0}, buf.Bytes())
}

// TestLoadShortFile 驗證檔案過短時提前停止，不視為錯誤。
func TestLoadShortFile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, sample()))
	short := buf.Bytes()[:2*RecordSize+5] // 第三筆不完整

	path := filepath.Join(t.TempDir(), "accounts.dat")
	require.NoError(t, os.WriteFile(path, short, 0o644))

	got, err := Load(path, FormatBinary, 100)
	require.NoError(t, err)
	assert.Equal(t, sample()[:2], got)
}

func TestLoadLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.dat")
	require.NoError(t, Save(path, FormatBinary, sample()))

	got, err := Load(path, FormatBinary, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.dat"), FormatBinary, 10)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestJSONSnapshotRoundTrip 驗證 JSON 快照的 round-trip 與中繼資料。
func TestJSONSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")

	require.NoError(t, Save(path, FormatJSON, sample()))

	f, err := os.Open(path)
	require.NoError(t, err)
	snap, err := decodeSnapshot(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "json_snapshot", snap.Meta.Storage)
	assert.Equal(t, 1, snap.Meta.Version)
	assert.False(t, snap.Meta.Timestamp.IsZero())

	got, err := Load(path, FormatJSON, 3)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x")
	assert.ErrorIs(t, Save(path, Format("xml"), sample()), ErrUnknownFormat)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err := Load(path, Format("xml"), 1)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSaveUnwritableDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "accounts.dat")
	assert.Error(t, Save(path, FormatBinary, sample()))
}
