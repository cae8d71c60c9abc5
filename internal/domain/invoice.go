package domain

// Invoice is one normalized invoice line as produced by the extraction
// pipeline. Numeric fields default to 0 when the source column was absent;
// the audit checks treat 0 as "not available" and abstain rather than guess.
type Invoice struct {
	ID                 int64   `json:"id,omitempty"`
	BatchID            int64   `json:"batch_id,omitempty"`
	AWBNumber          string  `json:"awb_number"`
	ShipmentDate       string  `json:"shipment_date,omitempty"`
	OriginPincode      string  `json:"origin_pincode,omitempty"`
	DestinationPincode string  `json:"destination_pincode,omitempty"`
	WeightBilled       float64 `json:"weight_billed"`
	ActualWeight       float64 `json:"actual_weight,omitempty"`
	Zone               string  `json:"zone"`
	BaseFreight        float64 `json:"base_freight"`
	CODFee             float64 `json:"cod_fee"`
	RTOFee             float64 `json:"rto_fee"`
	FuelSurcharge      float64 `json:"fuel_surcharge"`
	OtherSurcharges    float64 `json:"other_surcharges"`
	GSTRate            float64 `json:"gst_rate"`
	TotalBilled        float64 `json:"total_billed"`
}
