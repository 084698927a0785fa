package config

// dateOptions holds every option that applies at the date level (and, since
// the root carries defaults for every level, at the root level too). Spec §3
// "DateConfig".
type dateOptions struct {
	includeGroups option[StringSet]
	excludeGroups option[StringSet]
	groupOrdering option[GroupOrdering]
}

func defaultDateOptions() dateOptions {
	var d dateOptions
	d.includeGroups.set(NewStringSet())
	d.excludeGroups.set(NewStringSet())
	d.groupOrdering.set(OrderNatural)
	return d
}
