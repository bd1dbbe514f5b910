package signal

// #region groups

// Facial holds the face-derived measurements of a snapshot.
type Facial struct {
	EyeOpenness     float64 `json:"eye_openness"`
	BlinkFrequency  float64 `json:"blink_frequency"`
	EyeMoisture     float64 `json:"eye_moisture"`
	ForeheadTension float64 `json:"forehead_tension"`
	BrowPosition    float64 `json:"brow_position"`
	JawTension      float64 `json:"jaw_tension"`
	LipCompression  float64 `json:"lip_compression"`
	FacialSymmetry  float64 `json:"facial_symmetry"`
}

// Postural holds the posture-derived measurements of a snapshot.
type Postural struct {
	HeadTilt       float64 `json:"head_tilt"`
	HeadForward    float64 `json:"head_forward"`
	ShoulderTension float64 `json:"shoulder_tension"`
	NeckTension    float64 `json:"neck_tension"`
}

// Respiratory holds the breathing-derived measurements of a snapshot.
type Respiratory struct {
	BreathingDepth float64 `json:"breathing_depth"`
	BreathingRate  float64 `json:"breathing_rate"`
	ChestMovement  float64 `json:"chest_movement"`
}

// #endregion groups

// #region snapshot

// Snapshot is one physiological signal sample produced by the external
// perception service. Immutable once produced; the engine never mutates it.
type Snapshot struct {
	Facial      Facial      `json:"facial"`
	Postural    Postural    `json:"postural"`
	Respiratory Respiratory `json:"respiratory"`
}

// #endregion snapshot
