package seed

// companyNamesCN feeds companyName2, which the index analyzes with the
// Chinese analyzer.
var companyNamesCN = []string{
	"阿里巴巴网络技术有限公司",
	"腾讯科技(深圳)有限公司",
	"华为技术有限公司",
	"百度在线网络技术有限公司",
	"京东世纪贸易有限公司",
	"网易(杭州)网络有限公司",
	"小米科技有限责任公司",
	"字节跳动科技有限公司",
	"美团点评科技有限公司",
	"中兴通讯股份有限公司",
	"大疆创新科技有限公司",
	"比亚迪股份有限公司",
	"顺丰速运有限公司",
	"平安科技(深圳)有限公司",
	"招商银行股份有限公司",
	"万科企业股份有限公司",
	"迈瑞医疗国际股份有限公司",
	"欢聚时代科技有限公司",
	"唯品会(中国)有限公司",
	"金蝶软件(中国)有限公司",
	"货拉拉科技有限公司",
	"富途网络科技有限公司",
	"微众银行股份有限公司",
	"传音控股股份有限公司",
	"汇顶科技股份有限公司",
	"优必选科技股份有限公司",
	"光启技术股份有限公司",
	"华大基因股份有限公司",
	"正中投资集团有限公司",
	"中国国际海运集装箱股份有限公司",
}

// categoryNames is the default job category list.
var categoryNames = []string{
	"Accounting",
	"Administration",
	"Architecture",
	"Banking",
	"Construction",
	"Consulting",
	"Customer Service",
	"Data Science",
	"Design",
	"Education",
	"Engineering",
	"Finance",
	"Healthcare",
	"Hospitality",
	"Human Resources",
	"Information Technology",
	"Insurance",
	"Legal",
	"Logistics",
	"Manufacturing",
	"Marketing",
	"Media",
	"Operations",
	"Product Management",
	"Real Estate",
	"Research",
	"Retail",
	"Sales",
	"Security",
	"Software Development",
}

// DefaultCategories returns the category names inserted on first start.
func DefaultCategories() []string {
	out := make([]string, len(categoryNames))
	copy(out, categoryNames)
	return out
}
