package bento

import (
	"fmt"

	"go.uber.org/zap"

	"bento-planner/internal/pkg/common"
)

// 批次生成時輪替的風格與目標卡路里
var (
	batchStyles   = []Style{StyleJapanese, StyleHealthy, StyleBalanced}
	batchCalories = []float64{500, 600, 700}
)

// Generator 批次生成互不重複的便當
type Generator struct {
	rng       RandomSource
	assembler *Assembler
}

// NewGenerator 建立生成器；rng 為 nil 時以時間為種子
func NewGenerator(rng RandomSource) *Generator {
	if rng == nil {
		rng = NewRandomSource(0)
	}
	return &Generator{rng: rng, assembler: NewAssembler(rng)}
}

// GenerateBatch 產生最多 count 個便當，盡量不重複使用食譜。
// 剩餘可用食譜少於兩道時重置並改用整個食譜池；組裝失敗的回合直接略過
func (g *Generator) GenerateBatch(pool []RecipeRecord, count int) []*Bento {
	if count < 0 {
		count = 0
	}
	valid := make([]RecipeRecord, 0, len(pool))
	for _, r := range pool {
		if r.valid() {
			valid = append(valid, r)
		}
	}

	bentos := make([]*Bento, 0, count)
	used := make(map[string]bool)

	for i := 0; i < count; i++ {
		available := make([]RecipeRecord, 0, len(valid))
		for _, r := range valid {
			if !used[r.ID] {
				available = append(available, r)
			}
		}
		if len(available) < 2 {
			common.LogDebug("可用食譜不足，重置已使用清單", zap.Int("iteration", i), zap.Int("available", len(available)))
			used = make(map[string]bool)
			available = valid
		}

		style := batchStyles[i%len(batchStyles)]
		calories := batchCalories[i%len(batchCalories)]

		bento, err := g.assemble(available, calories, style)
		if err != nil {
			common.LogWarn("便當生成失敗，略過此回合", zap.Int("iteration", i), zap.Error(err))
			continue
		}
		if bento == nil {
			continue
		}

		for _, it := range bento.Items {
			if !it.Source.IsPlaceholder() {
				used[it.Source.Recipe().ID] = true
			}
		}
		bentos = append(bentos, bento)
	}

	common.LogDebug("批次生成完成", zap.Int("requested", count), zap.Int("generated", len(bentos)))
	return bentos
}

// assemble 洗牌後組裝一回合，並將 panic 轉為錯誤
func (g *Generator) assemble(pool []RecipeRecord, calories float64, style Style) (bento *Bento, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assemble panic: %v", r)
		}
	}()
	return g.assembler.Assemble(shuffle(g.rng, pool), calories, style), nil
}
