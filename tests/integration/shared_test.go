package integration

import "fmt"

func fmtCityPath(id int64, suffix string) string {
	return fmt.Sprintf("/api/cities/%d%s", id, suffix)
}
