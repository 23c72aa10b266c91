package errors

import "errors"

// ErrCodeSpaceExhausted 签到码空间耗尽：多次尝试均与在用码冲突
var ErrCodeSpaceExhausted = errors.New("签到码空间暂时耗尽，请稍后重试")

// ErrDuplicateKey 唯一键冲突：并发的相同写已经落库，调用方可按良性空操作处理
var ErrDuplicateKey = errors.New("记录已存在")
