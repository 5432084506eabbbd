package bento

import (
	"math/rand"
	"time"
)

// RandomSource 可注入的亂數來源，測試時可傳入固定種子
type RandomSource interface {
	// Float64 回傳 [0,1) 的均勻亂數
	Float64() float64
	// Intn 回傳 [0,n) 的均勻整數
	Intn(n int) int
}

// NewRandomSource 建立以 seed 初始化的亂數來源；seed 為 0 時以目前時間初始化
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// uniform 回傳 [lo,hi) 的均勻亂數
func uniform(rng RandomSource, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// pick 隨機挑選一個索引
func pick[T any](rng RandomSource, items []T) int {
	return rng.Intn(len(items))
}

// shuffle Fisher–Yates 洗牌，回傳新切片
func shuffle[T any](rng RandomSource, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
