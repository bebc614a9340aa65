package foresight

import "sort"

// liquidation is a single request to sell one asset out of an investment
// account: how much to raise, which lots to consume, how the proceeds are
// taxed.
type liquidation struct {
	investment *Investment
	coord      AssetCoord
	to         AccountID // account credited with the net proceeds
	amount     float64   // gross dollars to raise at current prices
	price      float64   // current price per unit
	method     CostBasisMethod
	date       Date
	tax        TaxConfig
	ytdIncome  float64 // ordinary income already realized this year
	penalty    bool    // early-withdrawal penalty applies (below 59½)
}

// liquidationResult reports what a liquidation actually raised.
type liquidationResult struct {
	gross float64 // proceeds before taxes
	net   float64 // proceeds after taxes and penalties
}

// liquidate sells a position down by a dollar amount and returns the state
// changes: one lot subtraction per consumed lot, the taxes owed under the
// account's tax status, and the net cash credit. The request is capped at
// what the position holds; an empty or unpriced position raises nothing.
func liquidate(q liquidation) (liquidationResult, []evalEvent) {
	var lots []AssetLot
	for _, lot := range q.investment.Lots {
		if lot.Asset == q.coord.Asset {
			lots = append(lots, lot)
		}
	}
	if len(lots) == 0 || q.amount <= 0.001 || q.price <= 0 {
		return liquidationResult{}, nil
	}

	var totalUnits float64
	for _, lot := range lots {
		totalUnits += lot.Units
	}
	actual := min(q.amount, totalUnits*q.price)
	if actual <= 0.001 {
		return liquidationResult{}, nil
	}

	consumed := consumeLots(lots, actual, q.price, q.method, q.date)
	events := consumed.events(q.coord)

	gross := consumed.proceeds
	net := gross

	switch q.investment.TaxStatus {
	case Taxable:
		// Gains realized in a taxable account are taxed by holding period;
		// the principal comes back untouched.
		gains := RealizedGainsTax(consumed.shortTermGain, consumed.longTermGain, q.tax, q.ytdIncome)
		if consumed.shortTermGain > 0 {
			events = append(events, evalShortTermTax{
				gain:    consumed.shortTermGain,
				federal: gains.ShortTermFederal,
				state:   consumed.shortTermGain * q.tax.StateRate,
			})
		}
		if consumed.longTermGain > 0 {
			events = append(events, evalLongTermTax{
				gain:    consumed.longTermGain,
				federal: gains.LongTermFederal,
				state:   consumed.longTermGain * q.tax.StateRate,
			})
		}
		net -= gains.Total

	case TaxDeferred:
		// The whole gross is ordinary income, stacked on what the year has
		// already realized.
		ordinary := TaxDeferredWithdrawalTax(gross, q.tax, q.ytdIncome)
		events = append(events, evalIncomeTax{gross: gross, federal: ordinary.Federal, state: ordinary.State})
		net = ordinary.Net
		if q.penalty {
			p := gross * q.tax.EarlyWithdrawalPenaltyRate
			events = append(events, evalPenaltyTax{gross: gross, penalty: p, rate: q.tax.EarlyWithdrawalPenaltyRate})
			net -= p
		}

	case TaxFree:
		events = append(events, evalTaxFree{gross: gross})
	}

	events = append(events, evalCashCredit{to: q.to, amount: net, kind: FlowLiquidationProceeds})
	return liquidationResult{gross: gross, net: net}, events
}

// lotConsumption is what a sale takes out of a position: the aggregate
// numbers and the per-lot subtractions, gains split by holding period at 365
// days.
type lotConsumption struct {
	units         float64
	costBasis     float64
	proceeds      float64
	shortTermGain float64
	longTermGain  float64
	subtractions  []evalSubtractLot
}

// events stamps the position onto the per-lot subtractions.
func (c lotConsumption) events(coord AssetCoord) []evalEvent {
	events := make([]evalEvent, 0, len(c.subtractions))
	for _, sub := range c.subtractions {
		sub.from = coord
		events = append(events, sub)
	}
	return events
}

// consumeLots computes what selling a dollar amount takes out of a set of
// lots, without touching them. AverageCost blends every lot proportionally;
// the other methods order the lots and consume them one by one.
func consumeLots(lots []AssetLot, amount, price float64, method CostBasisMethod, on Date) lotConsumption {
	if amount <= 0 || len(lots) == 0 || price <= 0 {
		return lotConsumption{}
	}
	units := amount / price
	if method == AverageCost {
		return consumeAverage(lots, units, price, on)
	}
	return consumeOrdered(orderLots(lots, method), units, price, on)
}

// orderLots returns the lots in the order the method consumes them. The sort
// is stable, so lots tied on the key keep their purchase order.
func orderLots(lots []AssetLot, method CostBasisMethod) []AssetLot {
	ordered := make([]AssetLot, len(lots))
	copy(ordered, lots)
	switch method {
	case FIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].PurchaseDate.Before(ordered[j].PurchaseDate)
		})
	case LIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[j].PurchaseDate.Before(ordered[i].PurchaseDate)
		})
	case HighestCost:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].unitBasis() > ordered[j].unitBasis()
		})
	case LowestCost:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].unitBasis() < ordered[j].unitBasis()
		})
	}
	return ordered
}

func consumeOrdered(lots []AssetLot, unitsToSell, price float64, on Date) lotConsumption {
	var c lotConsumption
	remaining := unitsToSell
	for _, lot := range lots {
		if remaining <= 0.001 {
			break
		}
		take := min(remaining, lot.Units)
		var fraction float64
		if lot.Units > 0 {
			fraction = take / lot.Units
		}
		basis := lot.CostBasis * fraction
		proceeds := take * price
		gain := proceeds - basis

		sub := evalSubtractLot{
			lotDate:   lot.PurchaseDate,
			units:     take,
			costBasis: basis,
			proceeds:  proceeds,
		}
		if DaysBetween(lot.PurchaseDate, on) >= 365 {
			sub.longGain = max(0, gain)
			c.longTermGain += sub.longGain
		} else {
			sub.shortGain = max(0, gain)
			c.shortTermGain += sub.shortGain
		}

		c.units += take
		c.costBasis += basis
		c.proceeds += proceeds
		c.subtractions = append(c.subtractions, sub)
		remaining -= take
	}
	return c
}

func consumeAverage(lots []AssetLot, unitsToSell, price float64, on Date) lotConsumption {
	var totalUnits, totalBasis float64
	for _, lot := range lots {
		totalUnits += lot.Units
		totalBasis += lot.CostBasis
	}
	if totalUnits <= 0 {
		return lotConsumption{}
	}
	actual := min(unitsToSell, totalUnits)
	proportion := actual / totalUnits
	avgBasis := totalBasis / totalUnits

	c := lotConsumption{units: actual, proceeds: actual * price}
	for _, lot := range lots {
		take := lot.Units * proportion
		if take <= 0.001 {
			continue
		}
		// Gains are measured against the blended basis; the subtraction
		// still consumes the lot's own basis so the books stay exact.
		basis := take * avgBasis
		c.costBasis += basis
		proceeds := take * price
		gain := proceeds - basis

		sub := evalSubtractLot{
			lotDate:   lot.PurchaseDate,
			units:     take,
			costBasis: lot.CostBasis * proportion,
			proceeds:  proceeds,
		}
		if DaysBetween(lot.PurchaseDate, on) >= 365 {
			sub.longGain = max(0, gain)
			c.longTermGain += sub.longGain
		} else {
			sub.shortGain = max(0, gain)
			c.shortTermGain += sub.shortGain
		}
		c.subtractions = append(c.subtractions, sub)
	}
	return c
}
