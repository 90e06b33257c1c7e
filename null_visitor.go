package itch

// NullVisitor implements Visitor with every method a no-op, for
// embedding in a caller's own visitor so only the kinds it cares about
// need an override.
type NullVisitor struct{}

func (NullVisitor) OnSystemEvent(*SystemEvent) error { return nil }
func (NullVisitor) OnAddOrder(*AddOrder) error        { return nil }
func (NullVisitor) OnExecuteOrder(*ExecuteOrder) error { return nil }
func (NullVisitor) OnCancelOrder(*CancelOrder) error  { return nil }
func (NullVisitor) OnDeleteOrder(*DeleteOrder) error  { return nil }
func (NullVisitor) OnTrade(*Trade) error              { return nil }
func (NullVisitor) OnCrossTrade(*CrossTrade) error    { return nil }
func (NullVisitor) OnBrokenTrade(*BrokenTrade) error  { return nil }
func (NullVisitor) OnNOII(*NetOrderImbalanceIndicator) error { return nil }

func (NullVisitor) OnStockDirectory(*StockDirectory) error                       { return nil }
func (NullVisitor) OnStockTradingAction(*StockTradingAction) error               { return nil }
func (NullVisitor) OnRegSHORestriction(*RegSHORestriction) error                 { return nil }
func (NullVisitor) OnMarketParticipantPosition(*MarketParticipantPosition) error { return nil }

func (NullVisitor) OnStreamEnd() error { return nil }
