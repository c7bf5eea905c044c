// Package gis client của dịch vụ gợi ý địa chỉ GIS (address.pochta.ru suggest API)
package gis

import "github.com/address-resolver/internal/fias"

// SearchRequest body của endpoint tìm kiếm tự do
type SearchRequest struct {
	AppName     string `json:"appName"`
	ReqID       string `json:"reqId"`
	RmFedCities bool   `json:"rmFedCities"`
	Addr        string `json:"addr"`
	AddressType int    `json:"addressType"`
}

// ChildrenRequest body của endpoint children
type ChildrenRequest struct {
	AppName     string `json:"appName"`
	ReqID       string `json:"reqId"`
	CountOnPage int    `json:"countOnPage"`
	ParentGUID  string `json:"parentGuid"`
	Addr        string `json:"addr,omitempty"` // lọc theo văn bản
}

// SearchResponse kết quả tìm kiếm tự do
type SearchResponse struct {
	AppName   string    `json:"appName"`
	ReqID     string    `json:"reqId"`
	Request   string    `json:"request"`
	ErrorCode string    `json:"errorCode"`
	Addr      []Address `json:"addr"`
}

// ChildrenResponse kết quả endpoint children
type ChildrenResponse struct {
	AppName      string          `json:"appName"`
	ReqID        string          `json:"reqId"`
	FirstElemNum int             `json:"firstElemNum"`
	IsEnd        bool            `json:"isEnd"`
	ErrorCode    string          `json:"errorCode"`
	Request      ChildrenRequest `json:"request"`
	Children     []Address       `json:"children"`
}

// Address một kết quả khớp đầy đủ: chỉ số bưu chính và chuỗi phần tử
type Address struct {
	AddressGUID        string                `json:"addressGuid"`
	Historical         int                   `json:"historical"`
	OutAddr            string                `json:"outAddr"`
	OutAddrHighlighted string                `json:"outAddrHighlighted,omitempty"`
	Missing            string                `json:"missing,omitempty"`
	Index              string                `json:"index"`
	DeliveryArea       int                   `json:"deliveryArea"`
	Oktmo              string                `json:"oktmo,omitempty"`
	OktmoName          string                `json:"oktmoName,omitempty"`
	ParentOktmo        string                `json:"parentOktmo,omitempty"`
	ParentOktmoName    string                `json:"parentOktmoName,omitempty"`
	AddressType        int                   `json:"addressType"`
	Origin             int                   `json:"origin"`
	Level              fias.GisLevel         `json:"level"`
	Elements           []fias.AddressElement `json:"elements"`
}
