package cinemachine

import (
	"github.com/edwinsyarief/cinemachine/utils"
)

var defaultWorldUp = utils.Up
var defaultBlend = BlendDefinition{Style: BlendEaseInOut, Time: 2}

// Returns the blend new brains start with: two seconds of ease in out.
func DefaultBlendDefinition() BlendDefinition { return defaultBlend }
