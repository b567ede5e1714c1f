package entity

// controller models

type OrderOutputModel struct {
	Id                     string  `json:"id"`
	ProductId              string  `json:"productId"`
	AreaGroupId            string  `json:"areaGroupId"`
	Status                 string  `json:"status"`
	AuctionEndsAt          string  `json:"auctionEndsAt"`
	TotalQuantityCommitted string  `json:"totalQuantityCommitted"`
	FinalPricePerUnit      *string `json:"finalPricePerUnit"`
	WinningBidId           *string `json:"winningBidId"`
	CreatedAt              string  `json:"createdAt"`
}

type OrderDetailsOutputModel struct {
	PooledOrder      OrderOutputModel `json:"pooledOrder"`
	CurrentLowestBid *string          `json:"currentLowestBid"`
	MinNextBid       *string          `json:"minNextBid"`
	IsAuctionActive  bool             `json:"isAuctionActive"`
}

type BidOutputModel struct {
	Id            string  `json:"id"`
	PooledOrderId string  `json:"pooledOrderId"`
	SupplierId    string  `json:"supplierId"`
	PricePerUnit  string  `json:"pricePerUnit"`
	Notes         *string `json:"notes"`
	CreatedAt     string  `json:"createdAt"`
}

type BidStatusOutputModel struct {
	BidId     string `json:"bidId"`
	Status    string `json:"status"`
	IsWinning bool   `json:"isWinning"`
}

type SupplierBidOutputModel struct {
	Bid              BidOutputModel   `json:"bid"`
	PooledOrder      OrderOutputModel `json:"pooledOrder"`
	Status           string           `json:"status"`
	IsWinning        bool             `json:"isWinning"`
	IsAuctionActive  bool             `json:"isAuctionActive"`
	CurrentLowestBid *string          `json:"currentLowestBid"`
}

type BidValidationOutputModel struct {
	PooledOrderId    string  `json:"pooledOrderId"`
	CurrentLowestBid *string `json:"currentLowestBid"`
	MinNextBid       *string `json:"minNextBid"`
}
