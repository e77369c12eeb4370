package repository

const (
	DEFAULTPAGE  = 1
	DEFAULTLIMIT = 10
	MAXLIMIT     = 100
)

// getPaginationInfo applies defaults and returns the normalised page, limit and offset.
func getPaginationInfo(page, limit int) (int, int, int) {
	var offset int
	// load defaults
	if page <= 0 {
		page = DEFAULTPAGE
	}
	if limit <= 0 {
		limit = DEFAULTLIMIT
	}
	if limit > MAXLIMIT {
		limit = MAXLIMIT
	}

	if page > 1 {
		offset = limit * (page - 1)
	}
	return page, limit, offset
}
