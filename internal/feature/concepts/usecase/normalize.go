// Package usecase は概念タグの正規化ロジックを実装します。
package usecase

import (
	"strings"

	"stock_sync/internal/feature/concepts/domain/entity"
)

// MaxTagsPerFetch は1回の取得結果から保持する概念タグの上限数です。
// 上限は1回の取得結果の中でのみ適用され、過去の取得分とまたいで
// 数え直すことはありません（後の取得は追記であってマージではない）。
const MaxTagsPerFetch = 10

// Normalize は提供元から得た概念名を重複除去し、上限数まで切り詰めて
// ConceptTag のスライスに変換します。空白のみの名称は捨てます。
// 重複除去後の順序は入力の初出順です。
func Normalize(code string, names []string) []entity.ConceptTag {
	seen := make(map[string]struct{}, len(names))
	out := make([]entity.ConceptTag, 0, MaxTagsPerFetch)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, entity.ConceptTag{Code: code, Concept: n})
		if len(out) == MaxTagsPerFetch {
			break
		}
	}
	return out
}
