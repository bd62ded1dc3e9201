package usecase

import "stock_sync/internal/feature/instruments/domain/entity"

// mergeDirectory はプライマリの銘柄リストと取引所別の補強リストをコードで結合します。
// 左結合であり、プライマリに存在しないコードは結果に含まれません。
// 名称は両方に存在する場合プライマリを優先し、プライマリ側が空のときだけ
// 補強側の名称を採用します。業種・地域・市場は補強側からのみ得られます。
// 結果はプライマリの並び順を保持します（この順がカタログ順になります）。
func mergeDirectory(primary []entity.Instrument, enrichment []entity.Instrument) []entity.Instrument {
	byCode := make(map[string]entity.Instrument, len(enrichment))
	for _, e := range enrichment {
		// 同一コードが複数の補強フィードに現れた場合は先勝ち
		if _, ok := byCode[e.Code]; !ok {
			byCode[e.Code] = e
		}
	}

	out := make([]entity.Instrument, 0, len(primary))
	for i, p := range primary {
		row := entity.Instrument{
			Code:    p.Code,
			Name:    p.Name,
			SortKey: i,
		}
		if e, ok := byCode[p.Code]; ok {
			if row.Name == "" {
				row.Name = e.Name
			}
			row.Industry = e.Industry
			row.Area = e.Area
			row.Market = e.Market
		}
		out = append(out, row)
	}
	return out
}

// applyListingDates は上場日の対応表を該当する銘柄へ反映します。
// 表に無いコードの ListDate は null のまま残ります。
func applyListingDates(list []entity.Instrument, dates map[string]string) {
	if len(dates) == 0 {
		return
	}
	for i := range list {
		if d, ok := dates[list[i].Code]; ok && d != "" {
			v := d
			list[i].ListDate = &v
		}
	}
}
