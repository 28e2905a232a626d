package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bentpower/ercotsum-go/archive"
	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/types"
	"github.com/bentpower/ercotsum-go/www/chartjs"
)

func NewChartHandler(logger *slog.Logger, db *archive.Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		now := time.Now().In(hours.MarketLocation())
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, hours.MarketLocation())

		snaps, err := db.GetSnapshotsSince(r.Context(), midnight)
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// One representative snapshot per hour, the latest wins.
		byHour := make(map[int]types.Snapshot)
		for _, s := range snaps {
			at := time.Unix(s.AsOfT, 0).In(hours.MarketLocation())
			byHour[at.Hour()] = s
		}

		// Chart 1: Delivered Price and Running Average
		chart1 := chartjs.NewChart("")
		for i := 0; i < chartjs.NoOfHours; i++ {
			s, ok := byHour[i]
			if !ok {
				chart1.Data.Datasets[0].Data[i] = nil
				chart1.Data.Datasets[1].Data[i] = nil
				continue
			}
			chart1.Data.Datasets[0].Data[i] = chartjs.FixedFloat64(s.CurrDeliveredCents, 2)
			if s.AvgDeliveredCents != nil {
				chart1.Data.Datasets[1].Data[i] = chartjs.FixedFloat64(*s.AvgDeliveredCents, 2)
			}
		}
		chart1.Options.Scales["YAxis1"] = chart1.Options.Scales["YAxis1"].
			WithTitle("Delivered (¢/kWh)")
		chart1.Options.Scales["YAxis2"] = chart1.Options.Scales["YAxis2"].
			WithTitle("Average (¢/kWh)")

		// Chart 2: Demand and Raw Price
		chart2 := chartjs.NewChart("")
		for i := 0; i < chartjs.NoOfHours; i++ {
			s, ok := byHour[i]
			if !ok {
				chart2.Data.Datasets[0].Data[i] = nil
				chart2.Data.Datasets[1].Data[i] = nil
				continue
			}
			if s.Demand1m != nil {
				chart2.Data.Datasets[0].Data[i] = chartjs.FixedFloat64(*s.Demand1m, 2)
			}
			chart2.Data.Datasets[1].Data[i] = chartjs.FixedFloat64(s.CurrSppCents, 2)
		}
		chart2.Options.Scales["YAxis1"] = chart2.Options.Scales["YAxis1"].
			WithTitle("Demand (kW)")
		chart2.Options.Scales["YAxis2"] = chart2.Options.Scales["YAxis2"].
			WithTitle("Raw (¢/kWh)")

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode([]chartjs.Chart{chart1, chart2})
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, "unable to encode data points", http.StatusInternalServerError)
			return
		}
	}
}
