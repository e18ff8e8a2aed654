package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Method names of the deployed PayPerView contract.
const (
	MethodUploadVideo     = "uploadVideo"
	MethodPayToView       = "payToView"
	MethodCanView         = "canView"
	MethodGetVideos       = "getVideos"
	MethodGetVideoInfo    = "getVideoInfo"
	MethodHasPurchased    = "hasPurchased"
	MethodGetTotalViewers = "getTotalViewers"
	MethodVideoCount      = "videoCount"
	MethodEarnings        = "earnings"
	MethodWithdraw        = "withdraw"
	MethodUpdateVideo     = "updateVideo"
	MethodToggleActive    = "toggleActive"
)

const payPerViewABI = `[
  {"type":"function","name":"uploadVideo","stateMutability":"nonpayable","inputs":[
    {"name":"_videoHash","type":"string"},{"name":"_thumbnailHash","type":"string"},
    {"name":"_price","type":"uint256"},{"name":"_displayTime","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"payToView","stateMutability":"payable","inputs":[
    {"name":"videoId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"canView","stateMutability":"view","inputs":[
    {"name":"videoId","type":"uint256"},{"name":"user","type":"address"}],"outputs":[
    {"name":"","type":"bool"}]},
  {"type":"function","name":"getVideos","stateMutability":"view","inputs":[],"outputs":[
    {"name":"","type":"address[]"},{"name":"","type":"string[]"},{"name":"","type":"string[]"},
    {"name":"","type":"uint256[]"},{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getVideoInfo","stateMutability":"view","inputs":[
    {"name":"videoId","type":"uint256"}],"outputs":[
    {"name":"uploader","type":"address"},{"name":"videoHash","type":"string"},
    {"name":"thumbnailHash","type":"string"},{"name":"title","type":"string"},
    {"name":"description","type":"string"},{"name":"price","type":"uint256"},
    {"name":"displayTime","type":"uint256"},{"name":"active","type":"bool"},
    {"name":"totalViews","type":"uint256"},{"name":"totalRevenue","type":"uint256"}]},
  {"type":"function","name":"hasPurchased","stateMutability":"view","inputs":[
    {"name":"videoId","type":"uint256"},{"name":"user","type":"address"}],"outputs":[
    {"name":"","type":"bool"}]},
  {"type":"function","name":"getTotalViewers","stateMutability":"view","inputs":[
    {"name":"videoId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"videoCount","stateMutability":"view","inputs":[],"outputs":[
    {"name":"","type":"uint256"}]},
  {"type":"function","name":"earnings","stateMutability":"view","inputs":[
    {"name":"","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"updateVideo","stateMutability":"nonpayable","inputs":[
    {"name":"videoId","type":"uint256"},{"name":"_title","type":"string"},
    {"name":"_description","type":"string"},{"name":"_price","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"toggleActive","stateMutability":"nonpayable","inputs":[
    {"name":"videoId","type":"uint256"}],"outputs":[]}
]`

var contractABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(payPerViewABI))
	if err != nil {
		panic("evm: invalid contract ABI: " + err.Error())
	}
	return parsed
}
