package model

// LikeStatus is the aggregate the likes endpoints return: the total like
// count for a track and whether the calling user is among the likers. The
// camelCase field names are part of the client contract.
type LikeStatus struct {
	LikeCount int64 `json:"likeCount"`
	UserLiked bool  `json:"userLiked"`
}
