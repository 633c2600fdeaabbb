package market

import "fmt"

// Gap 表示缺失的连续 K 线区间。
type Gap struct {
	From  int64 `json:"from"`
	To    int64 `json:"to"`
	Count int64 `json:"count"`
}

// IntegrityReport 描述一段已加载 K 线的覆盖情况。
type IntegrityReport struct {
	Start    int64 `json:"start"`
	End      int64 `json:"end"`
	Expected int64 `json:"expected"`
	Present  int64 `json:"present"`
	Gaps     []Gap `json:"gaps"`
}

func (r IntegrityReport) Complete() bool { return len(r.Gaps) == 0 }

// CheckContinuity 检查升序 K 线序列在首尾之间是否有缺口。
func CheckContinuity(interval string, candles []Candle) (IntegrityReport, error) {
	var report IntegrityReport
	secs, err := IntervalSeconds(interval)
	if err != nil {
		return report, err
	}
	step := secs * 1000
	if len(candles) == 0 {
		return report, nil
	}

	report.Start = candles[0].OpenTime
	report.End = candles[len(candles)-1].OpenTime
	report.Present = int64(len(candles))
	report.Expected = (report.End-report.Start)/step + 1

	for _, c := range candles {
		if (c.OpenTime-report.Start)%step != 0 {
			return report, fmt.Errorf("K 线未按 %s 对齐: open_time=%d", interval, c.OpenTime)
		}
	}

	cursor := report.Start
	idx := 0
	for cursor <= report.End {
		if idx < len(candles) && candles[idx].OpenTime == cursor {
			idx++
			cursor += step
			continue
		}
		gapStart := cursor
		var missing int64
		for cursor <= report.End {
			if idx < len(candles) && candles[idx].OpenTime == cursor {
				break
			}
			cursor += step
			missing++
		}
		report.Gaps = append(report.Gaps, Gap{From: gapStart, To: cursor - step, Count: missing})
	}
	return report, nil
}
