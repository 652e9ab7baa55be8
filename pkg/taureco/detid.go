package taureco

import "fmt"

// Detector is the top-level subsystem encoded in a DetID.
type Detector uint32

const (
	DetectorTracker Detector = 1
	DetectorMuon    Detector = 2
	DetectorEcal    Detector = 3
	DetectorHcal    Detector = 4
	DetectorCalo    Detector = 5
)

// Ecal subdetector codes.
const (
	EcalBarrel    = 1
	EcalEndcap    = 2
	EcalPreshower = 3
)

const (
	detShift    = 28
	subdetShift = 25
	subdetMask  = 0x7
	indexMask   = 1<<subdetShift - 1
)

// DetID identifies a detector element: 4 bits detector, 3 bits
// subdetector, 25 bits element index.
type DetID uint32

// NewDetID packs a detector, subdetector and element index.
// Index bits above 25 are discarded.
func NewDetID(det Detector, subdet uint32, index uint32) DetID {
	return DetID(uint32(det)<<detShift | (subdet&subdetMask)<<subdetShift | index&indexMask)
}

// Det returns the detector code.
func (d DetID) Det() Detector {
	return Detector(uint32(d) >> detShift)
}

// Subdet returns the subdetector code.
func (d DetID) Subdet() uint32 {
	return uint32(d) >> subdetShift & subdetMask
}

// Index returns the element index within the subdetector.
func (d DetID) Index() uint32 {
	return uint32(d) & indexMask
}

// Raw returns the packed value.
func (d DetID) Raw() uint32 {
	return uint32(d)
}

// String renders the id as det/subdet/index.
func (d DetID) String() string {
	return fmt.Sprintf("%d/%d/%d", d.Det(), d.Subdet(), d.Index())
}
