package feature

// QTMTTLen and HorVerLen are the fixed lengths of the two feature vectors
// FeatureExtractor produces, per spec.md §4.1. The assembly order below
// MUST match the order the classifiers in internal/forest were trained on.
const (
	QTMTTLen = 34
	HorVerLen = 45
)

// QTMTTVector is the 34-dim feature vector consumed by the NoSplit/QT-vs-MTT
// classifier.
type QTMTTVector [QTMTTLen]float64

// HorVerVector is the 45-dim feature vector consumed by the
// Horizontal-vs-Vertical classifier.
type HorVerVector [HorVerLen]float64

// QT-vs-MTT field indices, in fixed assembly order.
const (
	QTTLayer = iota
	QTQP
	QTVar
	QTGradHor
	QTGradVer
	QTGradHorOverVer
	QTVarTopL
	QTVarTopR
	QTVarBotL
	QTVarBotR
	QTVarMvScaled
	QTVarMvTopLScaled
	QTVarMvTopRScaled
	QTVarMvBotLScaled
	QTVarMvBotRScaled
	QTEigenDifference
	QTAveSAD
	QTVarSAD
	QTVarSADTopL
	QTVarSADTopR
	QTVarSADBotL
	QTVarSADBotR
	QTSobelTopL
	QTSobelTopR
	QTSobelBotL
	QTSobelBotR
	QTRatio2HGrad
	QTRatio2VGrad
	QTRatio2HVarMVScaled
	QTRatio2VVarMVScaled
	QTRatio2HVVarMVScaled
	QTIsIntra
	QTIsInter
	QTIsMerge
)

// Hor-vs-Ver field indices, in fixed assembly order.
const (
	HVTLayer = iota
	HVQP
	HVVar
	HVGradHor
	HVGradVer
	HVGradHorOverVer
	HVVarTopL
	HVVarTopR
	HVVarBotL
	HVVarBotR
	HVVarMvScaled
	HVVarMvTopLScaled
	HVVarMvTopRScaled
	HVVarMvBotLScaled
	HVVarMvBotRScaled
	HVAveMVScaled
	HVAveMVTopLScaled
	HVAveMVTopRScaled
	HVAveMVBotLScaled
	HVAveMVBotRScaled
	HVAveSAD
	HVVarSAD
	HVVarSADTopL
	HVVarSADTopR
	HVVarSADBotL
	HVVarSADBotR
	HVSobelTopL
	HVSobelTopR
	HVSobelBotL
	HVSobelBotR
	HVRatio2HGrad
	HVRatio2VGrad
	HVRatio2HVarMVScaled
	HVRatio2VVarMVScaled
	HVRatio2HVarPix
	HVRatio2VVarPix
	HVRatio2HaveSAD
	HVRatio2VaveSAD
	HVRatio2HSobel
	HVRatio2VSobel
	HVRatio2HVSobel
	HVIsIntra
	HVIsInter
	HVIsMerge
	HVIsGeo
)
