package analytics

import (
	"sort"

	"brigade/internal/domain"
	"brigade/internal/interfaces"

	"github.com/shopspring/decimal"
)

const topItemCount = 10

// Aggregate computes the full report over an already-filtered order set.
// Every order must carry resolved local calendar components; the aggregator
// itself never looks at a time zone. driverNames maps driver ids to display
// names; drivers without a resolvable name are left out of the performance
// table.
//
// All money flows through decimal sums; nothing is rounded before the
// report boundary. An empty input produces a zero-valued report.
func Aggregate(orders []*domain.Order, driverNames map[string]string) *interfaces.AnalyticsReport {
	report := &interfaces.AnalyticsReport{
		Revenue:     zeroRevenue(),
		TotalOrders: len(orders),
	}

	dayBuckets := make(map[string]*interfaces.DateBucket)
	weekBuckets := make(map[string]*interfaces.DateBucket)
	hourBuckets := make([]interfaces.HourBucket, 24)
	for h := range hourBuckets {
		hourBuckets[h] = interfaces.HourBucket{Hour: h, Revenue: decimal.Zero}
	}

	type itemAgg struct {
		name     string
		quantity int
		first    int // insertion order, the tie-break
	}
	items := make(map[string]*itemAgg)
	itemOrder := 0

	type driverAgg struct {
		completed int
		tips      decimal.Decimal
	}
	drivers := make(map[string]*driverAgg)

	for _, o := range orders {
		rev := &report.Revenue
		rev.Total = rev.Total.Add(o.Total)
		rev.Subtotal = rev.Subtotal.Add(o.Subtotal)
		rev.DeliveryFees = rev.DeliveryFees.Add(o.DeliveryFee)
		rev.Tips = rev.Tips.Add(o.TipAmount)
		rev.Taxes = rev.Taxes.Add(o.Taxes)
		if o.Fulfillment == domain.FulfillmentPickup {
			rev.Pickup = rev.Pickup.Add(o.Total)
		} else {
			rev.Delivery = rev.Delivery.Add(o.Total)
		}

		dayKey := o.LocalPlacedAt.Date().Format("2006-01-02")
		addToBucket(dayBuckets, dayKey, o.Total)

		weekKey := o.LocalPlacedAt.ISOWeekStart().Format("2006-01-02")
		addToBucket(weekBuckets, weekKey, o.Total)

		h := o.LocalPlacedAt.Hour
		hourBuckets[h].Count++
		hourBuckets[h].Revenue = hourBuckets[h].Revenue.Add(o.Total)

		for _, it := range o.Items {
			key := it.ItemKey()
			agg, ok := items[key]
			if !ok {
				agg = &itemAgg{name: it.Name, first: itemOrder}
				itemOrder++
				items[key] = agg
			}
			agg.quantity += it.Quantity
		}

		switch o.Status {
		case domain.StatusCancelled:
			report.CancelledFailed.Cancelled++
		case domain.StatusFailed:
			report.CancelledFailed.Failed++
		case domain.StatusCompleted:
			if o.DriverID != nil {
				if _, known := driverNames[*o.DriverID]; known {
					agg, ok := drivers[*o.DriverID]
					if !ok {
						agg = &driverAgg{tips: decimal.Zero}
						drivers[*o.DriverID] = agg
					}
					agg.completed++
					agg.tips = agg.tips.Add(o.TipAmount)
				}
			}
		}
	}

	report.OrdersByDay = sortedBuckets(dayBuckets)
	report.OrdersByWeek = sortedBuckets(weekBuckets)
	report.HourlyStats = hourBuckets

	if len(orders) > 0 {
		bad := report.CancelledFailed.Cancelled + report.CancelledFailed.Failed
		report.CancelledFailed.CancellationRate = float64(bad) / float64(len(orders)) * 100
	}

	itemKeys := make([]string, 0, len(items))
	for key := range items {
		itemKeys = append(itemKeys, key)
	}
	// Quantity descending; equal quantities keep first-encountered order.
	sort.Slice(itemKeys, func(i, j int) bool {
		a, b := items[itemKeys[i]], items[itemKeys[j]]
		if a.quantity != b.quantity {
			return a.quantity > b.quantity
		}
		return a.first < b.first
	})
	if len(itemKeys) > topItemCount {
		itemKeys = itemKeys[:topItemCount]
	}
	report.TopItems = make([]interfaces.ItemStat, 0, len(itemKeys))
	for _, key := range itemKeys {
		agg := items[key]
		report.TopItems = append(report.TopItems, interfaces.ItemStat{
			Key:      key,
			Name:     agg.name,
			Quantity: agg.quantity,
		})
	}

	report.DriverStats = make([]interfaces.DriverPerformance, 0, len(drivers))
	driverIDs := make([]string, 0, len(drivers))
	for id := range drivers {
		driverIDs = append(driverIDs, id)
	}
	sort.Strings(driverIDs)
	for _, id := range driverIDs {
		agg := drivers[id]
		avg := decimal.Zero
		if agg.completed > 0 {
			avg = agg.tips.Div(decimal.NewFromInt(int64(agg.completed)))
		}
		report.DriverStats = append(report.DriverStats, interfaces.DriverPerformance{
			DriverID:        id,
			DriverName:      driverNames[id],
			OrdersCompleted: agg.completed,
			TotalTips:       agg.tips,
			AverageTip:      avg,
		})
	}

	return report
}

func zeroRevenue() interfaces.Revenue {
	return interfaces.Revenue{
		Total:        decimal.Zero,
		Pickup:       decimal.Zero,
		Delivery:     decimal.Zero,
		Subtotal:     decimal.Zero,
		DeliveryFees: decimal.Zero,
		Tips:         decimal.Zero,
		Taxes:        decimal.Zero,
	}
}

func addToBucket(buckets map[string]*interfaces.DateBucket, key string, total decimal.Decimal) {
	b, ok := buckets[key]
	if !ok {
		b = &interfaces.DateBucket{Date: key, Revenue: decimal.Zero}
		buckets[key] = b
	}
	b.Count++
	b.Revenue = b.Revenue.Add(total)
}

func sortedBuckets(buckets map[string]*interfaces.DateBucket) []interfaces.DateBucket {
	out := make([]interfaces.DateBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
