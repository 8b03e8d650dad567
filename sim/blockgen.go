package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

const (
	gravityMS2          = 9.81
	reactionTimeS       = 2.5
	safetyMarginM       = 200.0
	defaultBlockLengthM = 1000.0
)

// MinBlockLengthM is the minimum safe block length in metres for a
// train on a section profile: reaction distance plus braking distance
// plus a fixed safety margin, with the gradient folded into an
// effective deceleration.
func MinBlockLengthM(train *Train, section *Section) float64 {
	vmaxMS := section.VmaxKmph * kmphToMS

	gradientAngle := math.Atan(section.Gradient / 100.0)
	// A downhill slope works against the brakes.
	effectiveDecel := train.BaseDecelerationMS2 - gravityMS2*math.Sin(gradientAngle)
	effectiveDecel = math.Max(effectiveDecel, 0.1)

	reactionDistM := vmaxMS * reactionTimeS
	brakingDistM := (vmaxMS * vmaxMS) / (2 * effectiveDecel)

	return math.Round(reactionDistM + brakingDistM + safetyMarginM)
}

// GenerateBlocks divides every automatic-signalling section into equal
// fixed blocks sized by the worst-case stopping distance over all
// trains fast enough to reach the section limit. Sections with no
// qualifying train use a 1 km bound, i.e. blocks of at most 1 km.
func GenerateBlocks(sections map[SectionKey]*Section, trains []*Train) {
	logrus.Info("Generating signal blocks for all sections...")
	for _, section := range sections {
		if section.Signalling != SignallingAutomatic {
			continue
		}

		worstCaseM := 0.0
		for _, train := range trains {
			if train.VmaxKmph >= section.VmaxKmph {
				if length := MinBlockLengthM(train, section); length > worstCaseM {
					worstCaseM = length
				}
			}
		}
		if worstCaseM == 0 {
			worstCaseM = defaultBlockLengthM
		}

		numBlocks := int(math.Ceil(section.LengthKm * 1000 / worstCaseM))
		blockLengthKm := section.LengthKm / float64(numBlocks)

		section.Blocks = make([]*Block, 0, numBlocks)
		for i := 0; i < numBlocks; i++ {
			section.Blocks = append(section.Blocks, &Block{
				ID:       fmt.Sprintf("%s-%s-B%d", section.U, section.V, i+1),
				LengthKm: blockLengthKm,
			})
		}
	}
	logrus.Info("Block generation complete.")
}
