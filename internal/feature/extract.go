// Package feature implements the deterministic spatial/temporal feature
// extraction that feeds the two random-forest classifiers in internal/forest.
//
// Grounded on the teacher's numerically dense internal/tq/interp.go (pure
// math, no codec state, stable across platforms): the same discipline of
// small, composable float64 helpers with explicit nil/error sentinels for
// "not computable" cases is carried over here as typed errors instead.
package feature

import (
	"math"

	"github.com/five82/splitforest/internal/area"
	"github.com/five82/splitforest/internal/codec"
	"github.com/five82/splitforest/internal/cuerrors"
)

// normWidthRef and normHeightRef are the reference resolution the MV
// variance/mean features are scale-normalized against (spec.md §4.1).
const (
	normWidthRef  = 416.0
	normHeightRef = 240.0
)

// Inputs bundles the read-only per-CU context FeatureExtractor needs beyond
// the picture itself.
type Inputs struct {
	Area    area.CodingUnitArea
	Picture codec.Picture
	TLayer  int
	QP      int
	IsIntra bool
	IsInter bool
	IsMerge bool
	IsGeo   bool
}

// quadRegion is a half-open pixel rectangle relative to the picture origin.
type quadRegion struct {
	x0, y0, x1, y1 int
}

func (r quadRegion) width() int  { return r.x1 - r.x0 }
func (r quadRegion) height() int { return r.y1 - r.y0 }

// quadrants splits a into TL, TR, BL, BR regions using the spec's
// halfW = max(width/2,4), halfH = max(height/2,4) rule.
func quadrants(a area.CodingUnitArea) (tl, tr, bl, br quadRegion) {
	halfW, halfH := a.HalfDims()
	midX := a.X + halfW
	midY := a.Y + halfH
	tl = quadRegion{a.X, a.Y, midX, midY}
	tr = quadRegion{midX, a.Y, a.X + a.Width, midY}
	bl = quadRegion{a.X, midY, midX, a.Y + a.Height}
	br = quadRegion{midX, midY, a.X + a.Width, a.Y + a.Height}
	return
}

// Extract computes the 34-dim QT-vs-MTT and 45-dim Hor-vs-Ver feature
// vectors for in.Area. Returns InsufficientArea if the CU exits picture
// bounds, or SingularFeatures if a ratio feature's denominator is exactly
// zero (spec.md §4.1 division-by-zero policy).
func Extract(in Inputs) (QTMTTVector, HorVerVector, error) {
	var qt QTMTTVector
	var hv HorVerVector

	pic := in.Picture
	if !in.Area.FitsWithin(pic.Width(), pic.Height()) {
		return qt, hv, cuerrors.NewInsufficientArea(in.Area.String())
	}

	full := quadRegion{in.Area.X, in.Area.Y, in.Area.X + in.Area.Width, in.Area.Y + in.Area.Height}
	tl, tr, bl, br := quadrants(in.Area)

	pixFull := pixelMoments(pic, full)
	pixTL := pixelMoments(pic, tl)
	pixTR := pixelMoments(pic, tr)
	pixBL := pixelMoments(pic, bl)
	pixBR := pixelMoments(pic, br)

	gradFull := gradientMoments(pic, full)
	gradTL := gradientMoments(pic, tl)
	gradTR := gradientMoments(pic, tr)
	gradBL := gradientMoments(pic, bl)
	gradBR := gradientMoments(pic, br)

	scaleW := float64(pic.Width()) / normWidthRef
	scaleH := float64(pic.Height()) / normHeightRef

	mvFull := mvMoments(pic, full, scaleW, scaleH)
	mvTL := mvMoments(pic, tl, scaleW, scaleH)
	mvTR := mvMoments(pic, tr, scaleW, scaleH)
	mvBL := mvMoments(pic, bl, scaleW, scaleH)
	mvBR := mvMoments(pic, br, scaleW, scaleH)

	sadFull := sadMoments(pic, full)
	sadTL := sadMoments(pic, tl)
	sadTR := sadMoments(pic, tr)
	sadBL := sadMoments(pic, bl)
	sadBR := sadMoments(pic, br)

	eigenDiff, err := eigenDifference(mvFull)
	if err != nil {
		return qt, hv, err
	}

	gradRatio, err := ratio(gradFull.hor, gradFull.ver)
	if err != nil {
		return qt, hv, err
	}

	// ratio2HGrad/ratio2VGrad are built from each quadrant's own
	// gradHor/gradVer ratio, then summed by column/row — not from the
	// column/row sum of gradHor+gradVer magnitude (EncModeCtrl.cpp:1975-1976).
	grTL, err := gradRatioQuad(gradTL.hor, gradTL.ver)
	if err != nil {
		return qt, hv, err
	}
	grTR, err := gradRatioQuad(gradTR.hor, gradTR.ver)
	if err != nil {
		return qt, hv, err
	}
	grBL, err := gradRatioQuad(gradBL.hor, gradBL.ver)
	if err != nil {
		return qt, hv, err
	}
	grBR, err := gradRatioQuad(gradBR.hor, gradBR.ver)
	if err != nil {
		return qt, hv, err
	}
	ratioHGrad, err := ratio(math.Abs(grTL+grBL), math.Abs(grTR+grBR))
	if err != nil {
		return qt, hv, err
	}
	ratioVGrad, err := ratio(math.Abs(grTL+grTR), math.Abs(grBL+grBR))
	if err != nil {
		return qt, hv, err
	}

	// ratio2HVarMVScaled/ratio2VVarMVScaled pool the hor/ver MV variance of
	// two adjacent quadrants into one combined-region variance per column
	// (or row) before dividing — summing the already-scaled per-quadrant
	// varScaled() values is a different quantity (EncModeCtrl.cpp:1978-1988).
	leftCol := mvTL.add(mvBL)
	rightCol := mvTR.add(mvBR)
	topRow := mvTL.add(mvTR)
	botRow := mvBL.add(mvBR)
	ratioHVarMV, err := axisRatioSum(leftCol.varHor(), rightCol.varHor(), leftCol.varVer(), rightCol.varVer())
	if err != nil {
		return qt, hv, err
	}
	ratioVVarMV, err := axisRatioSum(topRow.varHor(), botRow.varHor(), topRow.varVer(), botRow.varVer())
	if err != nil {
		return qt, hv, err
	}
	// ratio2HVVarMVScaled is simply the H/V ratio of the two ratios above,
	// not a new diagonal quadrant combination (EncModeCtrl.cpp:2001).
	ratioHVVarMV, err := ratio(ratioHVarMV, ratioVVarMV)
	if err != nil {
		return qt, hv, err
	}
	ratioHVarPix, err := hRatio(pixTL.variance(), pixTR.variance(), pixBL.variance(), pixBR.variance())
	if err != nil {
		return qt, hv, err
	}
	ratioVVarPix, err := vRatio(pixTL.variance(), pixTR.variance(), pixBL.variance(), pixBR.variance())
	if err != nil {
		return qt, hv, err
	}
	ratioHaveSAD, err := hRatio(sadTL.mean(), sadTR.mean(), sadBL.mean(), sadBR.mean())
	if err != nil {
		return qt, hv, err
	}
	ratioVaveSAD, err := vRatio(sadTL.mean(), sadTR.mean(), sadBL.mean(), sadBR.mean())
	if err != nil {
		return qt, hv, err
	}
	// Sobel's H/V convention is flipped relative to VarPix/SAD above: H is
	// the row split (top vs bottom), V is the column split (left vs right)
	// (EncModeCtrl.cpp:1994-1999).
	ratioHSobel, err := vRatio(gradTL.sobel, gradTR.sobel, gradBL.sobel, gradBR.sobel)
	if err != nil {
		return qt, hv, err
	}
	ratioVSobel, err := hRatio(gradTL.sobel, gradTR.sobel, gradBL.sobel, gradBR.sobel)
	if err != nil {
		return qt, hv, err
	}
	// ratio2HVSobel is the H/V ratio of the two ratios above, not a
	// diagonal quadrant combination (EncModeCtrl.cpp:2004).
	ratioHVSobel, err := ratio(ratioHSobel, ratioVSobel)
	if err != nil {
		return qt, hv, err
	}

	bf := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}

	qt[QTTLayer] = float64(in.TLayer)
	qt[QTQP] = float64(in.QP)
	qt[QTVar] = pixFull.variance()
	qt[QTGradHor] = gradFull.hor
	qt[QTGradVer] = gradFull.ver
	qt[QTGradHorOverVer] = gradRatio
	qt[QTVarTopL] = pixTL.variance()
	qt[QTVarTopR] = pixTR.variance()
	qt[QTVarBotL] = pixBL.variance()
	qt[QTVarBotR] = pixBR.variance()
	qt[QTVarMvScaled] = mvFull.varScaled()
	qt[QTVarMvTopLScaled] = mvTL.varScaled()
	qt[QTVarMvTopRScaled] = mvTR.varScaled()
	qt[QTVarMvBotLScaled] = mvBL.varScaled()
	qt[QTVarMvBotRScaled] = mvBR.varScaled()
	qt[QTEigenDifference] = eigenDiff
	qt[QTAveSAD] = sadFull.mean()
	qt[QTVarSAD] = sadFull.variance()
	qt[QTVarSADTopL] = sadTL.variance()
	qt[QTVarSADTopR] = sadTR.variance()
	qt[QTVarSADBotL] = sadBL.variance()
	qt[QTVarSADBotR] = sadBR.variance()
	qt[QTSobelTopL] = gradTL.sobel
	qt[QTSobelTopR] = gradTR.sobel
	qt[QTSobelBotL] = gradBL.sobel
	qt[QTSobelBotR] = gradBR.sobel
	qt[QTRatio2HGrad] = ratioHGrad
	qt[QTRatio2VGrad] = ratioVGrad
	qt[QTRatio2HVarMVScaled] = ratioHVarMV
	qt[QTRatio2VVarMVScaled] = ratioVVarMV
	qt[QTRatio2HVVarMVScaled] = ratioHVVarMV
	qt[QTIsIntra] = bf(in.IsIntra)
	qt[QTIsInter] = bf(in.IsInter)
	qt[QTIsMerge] = bf(in.IsMerge)

	hv[HVTLayer] = float64(in.TLayer)
	hv[HVQP] = float64(in.QP)
	hv[HVVar] = pixFull.variance()
	hv[HVGradHor] = gradFull.hor
	hv[HVGradVer] = gradFull.ver
	hv[HVGradHorOverVer] = gradRatio
	hv[HVVarTopL] = pixTL.variance()
	hv[HVVarTopR] = pixTR.variance()
	hv[HVVarBotL] = pixBL.variance()
	hv[HVVarBotR] = pixBR.variance()
	hv[HVVarMvScaled] = mvFull.varScaled()
	hv[HVVarMvTopLScaled] = mvTL.varScaled()
	hv[HVVarMvTopRScaled] = mvTR.varScaled()
	hv[HVVarMvBotLScaled] = mvBL.varScaled()
	hv[HVVarMvBotRScaled] = mvBR.varScaled()
	aveMVTopL := mvTL.aveMVScaledQuad()
	aveMVTopR := mvTR.aveMVScaledQuad()
	aveMVBotL := mvBL.aveMVScaledQuad()
	aveMVBotR := mvBR.aveMVScaledQuad()
	hv[HVAveMVScaled] = (aveMVTopL + aveMVTopR + aveMVBotL + aveMVBotR) / 4
	hv[HVAveMVTopLScaled] = aveMVTopL
	hv[HVAveMVTopRScaled] = aveMVTopR
	hv[HVAveMVBotLScaled] = aveMVBotL
	hv[HVAveMVBotRScaled] = aveMVBotR
	hv[HVAveSAD] = sadFull.mean()
	hv[HVVarSAD] = sadFull.variance()
	hv[HVVarSADTopL] = sadTL.variance()
	hv[HVVarSADTopR] = sadTR.variance()
	hv[HVVarSADBotL] = sadBL.variance()
	hv[HVVarSADBotR] = sadBR.variance()
	hv[HVSobelTopL] = gradTL.sobel
	hv[HVSobelTopR] = gradTR.sobel
	hv[HVSobelBotL] = gradBL.sobel
	hv[HVSobelBotR] = gradBR.sobel
	hv[HVRatio2HGrad] = ratioHGrad
	hv[HVRatio2VGrad] = ratioVGrad
	hv[HVRatio2HVarMVScaled] = ratioHVarMV
	hv[HVRatio2VVarMVScaled] = ratioVVarMV
	hv[HVRatio2HVarPix] = ratioHVarPix
	hv[HVRatio2VVarPix] = ratioVVarPix
	hv[HVRatio2HaveSAD] = ratioHaveSAD
	hv[HVRatio2VaveSAD] = ratioVaveSAD
	hv[HVRatio2HSobel] = ratioHSobel
	hv[HVRatio2VSobel] = ratioVSobel
	hv[HVRatio2HVSobel] = ratioHVSobel
	hv[HVIsIntra] = bf(in.IsIntra)
	hv[HVIsInter] = bf(in.IsInter)
	hv[HVIsMerge] = bf(in.IsMerge)
	hv[HVIsGeo] = bf(in.IsGeo)

	return qt, hv, nil
}

// pixelAccum holds the raw sum/squared-sum moments used for mean/variance
// of both the pixel and SAD domains.
type pixelAccum struct {
	sum, sqSum float64
	n          int
}

func (p pixelAccum) mean() float64 {
	if p.n == 0 {
		return 0
	}
	return p.sum / float64(p.n)
}

func (p pixelAccum) variance() float64 {
	if p.n == 0 {
		return 0
	}
	m := p.mean()
	return p.sqSum/float64(p.n) - m*m
}

func pixelMoments(pic codec.Picture, r quadRegion) pixelAccum {
	var acc pixelAccum
	for y := r.y0; y < r.y1; y++ {
		for x := r.x0; x < r.x1; x++ {
			v := float64(pic.Luma(x, y))
			acc.sum += v
			acc.sqSum += v * v
			acc.n++
		}
	}
	return acc
}

func sadMoments(pic codec.Picture, r quadRegion) pixelAccum {
	var acc pixelAccum
	for y := r.y0; y < r.y1; y += 4 {
		for x := r.x0; x < r.x1; x += 4 {
			v := float64(pic.SAD(x, y))
			acc.sum += v
			acc.sqSum += v * v
			acc.n++
		}
	}
	return acc
}

// gradAccum holds the row/column absolute-difference sums and the
// Sobel-squared-magnitude sum for a region.
type gradAccum struct {
	hor, ver float64
	sobel    float64
}

func gradientMoments(pic codec.Picture, r quadRegion) gradAccum {
	var g gradAccum
	for y := r.y0; y < r.y1; y++ {
		for x := r.x0; x < r.x1-1; x++ {
			g.hor += math.Abs(float64(pic.Luma(x+1, y) - pic.Luma(x, y)))
		}
	}
	for x := r.x0; x < r.x1; x++ {
		for y := r.y0; y < r.y1-1; y++ {
			g.ver += math.Abs(float64(pic.Luma(x, y+1) - pic.Luma(x, y)))
		}
	}
	for y := r.y0 + 1; y < r.y1-1; y++ {
		for x := r.x0 + 1; x < r.x1-1; x++ {
			gx := sobelHor(pic, x, y)
			gy := sobelVer(pic, x, y)
			g.sobel += float64(gx*gx + gy*gy)
		}
	}
	return g
}

func sobelHor(pic codec.Picture, x, y int) int {
	return (pic.Luma(x+1, y-1) + 2*pic.Luma(x+1, y) + pic.Luma(x+1, y+1)) -
		(pic.Luma(x-1, y-1) + 2*pic.Luma(x-1, y) + pic.Luma(x-1, y+1))
}

func sobelVer(pic codec.Picture, x, y int) int {
	return (pic.Luma(x-1, y+1) + 2*pic.Luma(x, y+1) + pic.Luma(x+1, y+1)) -
		(pic.Luma(x-1, y-1) + 2*pic.Luma(x, y-1) + pic.Luma(x+1, y-1))
}

// mvAccum holds the raw (uncentered) and scaled moments for the MV domain.
type mvAccum struct {
	sumHor, sumVer     float64
	sqSumHor, sqSumVer float64
	sumHorVer          float64
	n                  int
	scaleW, scaleH     float64
}

func mvMoments(pic codec.Picture, r quadRegion, scaleW, scaleH float64) mvAccum {
	acc := mvAccum{scaleW: scaleW, scaleH: scaleH}
	for y := r.y0; y < r.y1; y += 4 {
		for x := r.x0; x < r.x1; x += 4 {
			hor, ver := pic.MV(x, y)
			h, v := float64(hor), float64(ver)
			acc.sumHor += h
			acc.sumVer += v
			acc.sqSumHor += h * h
			acc.sqSumVer += v * v
			acc.sumHorVer += h * v
			acc.n++
		}
	}
	return acc
}

func (m mvAccum) meanHor() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sumHor / float64(m.n)
}

func (m mvAccum) meanVer() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sumVer / float64(m.n)
}

func (m mvAccum) varHor() float64 {
	if m.n == 0 {
		return 0
	}
	mh := m.meanHor()
	return m.sqSumHor/float64(m.n) - mh*mh
}

func (m mvAccum) varVer() float64 {
	if m.n == 0 {
		return 0
	}
	mv := m.meanVer()
	return m.sqSumVer/float64(m.n) - mv*mv
}

// varScaled returns the resolution-normalized combined MV variance.
func (m mvAccum) varScaled() float64 {
	sw, sh := safeScale(m.scaleW), safeScale(m.scaleH)
	return m.varHor()/(sw*sw) + m.varVer()/(sh*sh)
}

// add pools the raw moments of two regions into a single combined-region
// accumulator, e.g. two adjacent quadrants treated as one region for
// ratio2HVarMVScaled/ratio2VVarMVScaled (EncModeCtrl.cpp:1978-1988).
func (m mvAccum) add(other mvAccum) mvAccum {
	return mvAccum{
		sumHor:    m.sumHor + other.sumHor,
		sumVer:    m.sumVer + other.sumVer,
		sqSumHor:  m.sqSumHor + other.sqSumHor,
		sqSumVer:  m.sqSumVer + other.sqSumVer,
		sumHorVer: m.sumHorVer + other.sumHorVer,
		n:         m.n + other.n,
		scaleW:    m.scaleW,
		scaleH:    m.scaleH,
	}
}

// aveMVScaledQuad returns the per-quadrant aveMV*Scaled value: the L1 norm
// of the mean MV, scaled by the picture-width factor only
// (EncModeCtrl.cpp's aveMVTopLScaled et al.).
func (m mvAccum) aveMVScaledQuad() float64 {
	sw := safeScale(m.scaleW)
	return (math.Abs(m.meanHor()) + math.Abs(m.meanVer())) / sw
}

func safeScale(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

// eigenDifference computes ((a+d)^2 - 4(ad-b^2)) / (a+d)^2 for the global
// MV second-moment matrix [[a,b],[b,d]].
func eigenDifference(full mvAccum) (float64, error) {
	a := full.sqSumHor
	d := full.sqSumVer
	b := full.sumHorVer
	denom := (a + d) * (a + d)
	if denom == 0 {
		return 0, cuerrors.NewSingularFeatures("eigenDifference: zero MV second-moment trace")
	}
	return ((a+d)*(a+d) - 4*(a*d-b*b)) / denom, nil
}

func ratio(num, den float64) (float64, error) {
	if den == 0 {
		return 0, cuerrors.NewSingularFeatures("ratio: zero denominator")
	}
	return num / den, nil
}

// hRatio implements ratio2H* = |topL+botL| / |topR+botR| (left column vs
// right column).
func hRatio(topL, topR, botL, botR float64) (float64, error) {
	den := math.Abs(topR + botR)
	if den == 0 {
		return 0, cuerrors.NewSingularFeatures("ratio2H: zero denominator")
	}
	return math.Abs(topL+botL) / den, nil
}

// vRatio implements ratio2V* = |topL+topR| / |botL+botR| (top row vs
// bottom row).
func vRatio(topL, topR, botL, botR float64) (float64, error) {
	den := math.Abs(botL + botR)
	if den == 0 {
		return 0, cuerrors.NewSingularFeatures("ratio2V: zero denominator")
	}
	return math.Abs(topL+topR) / den, nil
}

// gradRatioQuad returns a single quadrant's gradHor/gradVer ratio, the
// building block ratio2HGrad/ratio2VGrad sum by column/row
// (EncModeCtrl.cpp:1975-1976).
func gradRatioQuad(hor, ver float64) (float64, error) {
	if ver == 0 {
		return 0, cuerrors.NewSingularFeatures("gradRatioQuad: zero gradVer denominator")
	}
	return hor / ver, nil
}

// axisRatioSum implements ratio2*VarMVScaled = |numHor/denHor| +
// |numVer/denVer|, combining the two MV axes after each has been pooled
// over its own column/row (EncModeCtrl.cpp:1978-1988).
func axisRatioSum(numHor, denHor, numVer, denVer float64) (float64, error) {
	if denHor == 0 || denVer == 0 {
		return 0, cuerrors.NewSingularFeatures("axisRatioSum: zero denominator")
	}
	return math.Abs(numHor/denHor) + math.Abs(numVer/denVer), nil
}
