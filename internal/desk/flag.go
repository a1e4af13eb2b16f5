// internal/desk/flag.go

// Package desk 實作固定大小的 desk 池：
// 每個 desk 擁有一個有界 FIFO 佇列與一個 worker，
// dispatcher 以「最短佇列優先」把新 session 分派給 desk。
package desk

import (
	"sync"
	"sync/atomic"
)

// Flag 為全程序共用的關閉旗標：只會由 false 變成 true，不會重設。
// Done() 回傳的 channel 在旗標設定時關閉，可供 select 觀察。
type Flag struct {
	set  atomic.Bool
	once sync.Once
	done chan struct{}
}

// NewFlag 建立尚未設定的旗標。
func NewFlag() *Flag {
	return &Flag{done: make(chan struct{})}
}

// Set 設定旗標；只有第一次呼叫回傳 true。
func (f *Flag) Set() bool {
	first := false
	f.once.Do(func() {
		f.set.Store(true)
		close(f.done)
		first = true
	})
	return first
}

// IsSet 回傳旗標是否已設定。
func (f *Flag) IsSet() bool { return f.set.Load() }

// Done 回傳在旗標設定時關閉的 channel。
func (f *Flag) Done() <-chan struct{} { return f.done }
