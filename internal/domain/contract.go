package domain

// WeightSlab is one (zone, weight-range) → rate entry of a contract's rate
// card. The interval is half-open from zero: a slab with MinWeight 0 covers
// (0, MaxWeight]; any other slab covers (MinWeight, MaxWeight].
type WeightSlab struct {
	Zone       string  `json:"zone"`
	MinWeight  float64 `json:"min_weight"`
	MaxWeight  float64 `json:"max_weight"`
	BaseRate   float64 `json:"base_rate"`
	PerExtraKg float64 `json:"per_extra_kg"` // 0 means flat rate for the slab
}

// Contract holds the contracted rates one provider is audited against.
// Slab order matters: when slabs overlap, the first match in list order
// wins. Percentage fields may be 0, in which case industry-standard
// defaults apply (see audit package).
type Contract struct {
	Provider         string       `json:"provider,omitempty"`
	WeightSlabs      []WeightSlab `json:"weight_slabs"`
	CODRate          float64      `json:"cod_rate"`
	CODRateType      string       `json:"cod_rate_type,omitempty"` // only "percentage" is modeled
	RTORate          float64      `json:"rto_rate"`
	FuelSurchargePct float64      `json:"fuel_surcharge_pct"`
	GSTPct           float64      `json:"gst_pct"`
}

// SavedContract is a parsed contract persisted for reuse across batches.
type SavedContract struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Provider  string   `json:"provider"`
	FilePath  string   `json:"file_path,omitempty"`
	Extracted Contract `json:"extracted_data"`
	CreatedAt string   `json:"created_at"`
}
