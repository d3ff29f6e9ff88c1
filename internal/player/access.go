// Package player implements the learner-facing course session: navigation
// across lessons and quizzes, completion tracking, quiz scoring, and the
// course access policy. Everything in this package is in-memory and free of
// I/O; persistence happens through the CompletionRecorder interface.
package player

import "github.com/agentiqhub/backend/internal/models"

// HasFullAccess decides whether a user may view a course's non-preview content.
//
// Internal visibility strictly gates regardless of payment state. Free courses
// grant full access to any authenticated user. Paid courses require a stored
// "purchased" or "granted" access record.
//
// The result must be evaluated fresh on every access decision and never cached
// across an access mutation (e.g. right after a purchase webhook grant).
func HasFullAccess(course *models.Course, access *models.UserCourseAccess, isInternal bool) bool {
	if course == nil {
		return false
	}
	if course.Visibility == models.CourseVisibilityInternal && !isInternal {
		return false
	}
	if course.Price == 0 {
		return true
	}
	if access == nil {
		return false
	}
	return access.AccessType == models.AccessTypePurchased || access.AccessType == models.AccessTypeGranted
}

// HasPremiumAccess decides whether a user may open a course's premium-tier
// modules. Premium profiles see everything; free profiles need a stored
// "purchased" or "granted" record for the course. Course price plays no part:
// a free course can still carry premium modules as an upsell.
func HasPremiumAccess(tier models.Tier, access *models.UserCourseAccess) bool {
	if tier == models.TierPremium {
		return true
	}
	if access == nil {
		return false
	}
	return access.AccessType == models.AccessTypePurchased || access.AccessType == models.AccessTypeGranted
}

// ModuleLocked reports whether a module's content is off limits for a user
// with the given premium access.
func ModuleLocked(module *models.CourseModule, premiumAccess bool) bool {
	return module.Tier == models.TierPremium && !premiumAccess
}
