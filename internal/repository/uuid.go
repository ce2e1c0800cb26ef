package repository

import "github.com/google/uuid"

// validID はIDがUUIDとして解釈できるかを返す。
// 不正なIDをそのままuuid列と比較するとPostgreSQLがエラーを返すため、
// 検索系メソッドでは「見つからない」として扱う。
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// filterValidIDs はUUIDとして解釈できるIDのみを返す。
func filterValidIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}
