package servicepackage

import "github.com/homecare/visit-api/internal/model"

type tier struct {
	level      int
	name       string
	audience   string
	price      float64
	frequency  int
	staff      string
	hospitals  string
	hours      string
	reports    string
	content    []string
	monitoring []string
	extras     []string
	gifts      []string
}

// catalog is the system default 10-tier home visit plan. All tiers run
// for 30 days.
var catalog = []tier{
	{
		level: 1, name: "贴心关怀型", audience: "身体健康，仅需基础关怀的老年人",
		price: 98, frequency: 1,
		staff: "护理员", hospitals: "社区卫生服务中心", hours: "工作日白天", reports: "无",
		content:    []string{"每月1次上门探访", "基础健康咨询", "测量血压、体温", "生活起居指导"},
		monitoring: []string{"血压", "体温"},
		gifts:      []string{"节日慰问礼品"},
	},
	{
		level: 2, name: "基础保障型", audience: "身体状况稳定，需要定期基础监测的老年人",
		price: 168, frequency: 2,
		staff: "护理员", hospitals: "一级医疗机构", hours: "工作日全天", reports: "无",
		content:    []string{"每月2次上门服务", "基础健康监测", "健康档案记录", "用药提醒服务"},
		monitoring: []string{"血压", "血糖", "体温"},
		gifts:      []string{"节日慰问礼品"},
	},
	{
		level: 3, name: "健康守护型", audience: "有轻微慢性病，需要定期监测的老年人",
		price: 298, frequency: 4,
		staff: "护士", hospitals: "二级医疗机构", hours: "工作日全天，周末可预约", reports: "无",
		content:    []string{"每月4次上门服务", "基础健康监测", "健康趋势分析", "用药指导和健康咨询"},
		monitoring: []string{"血压", "血糖", "体温", "心率"},
		gifts:      []string{"节日慰问礼品", "生日礼品"},
	},
	{
		level: 4, name: "专业护理型", audience: "有明确慢性病，需要专业护理指导的老年人",
		price: 498, frequency: 6,
		staff: "护士", hospitals: "二级医疗机构", hours: "工作日全天，周末可预约", reports: "月度健康报告",
		content:    []string{"每月6次上门服务", "全面健康监测", "慢性病管理指导", "伤口护理等基础护理服务"},
		monitoring: []string{"血压", "血糖", "体温", "心率", "血氧"},
		extras:     []string{"基础护理服务"},
		gifts:      []string{"节日慰问礼品", "生日礼品"},
	},
	{
		level: 5, name: "贴心陪护型", audience: "行动不便，需要较多关注的老年人",
		price: 798, frequency: 8,
		staff: "主管护师", hospitals: "二级医疗机构 + 部分三甲医院", hours: "每天可预约，节假日除外", reports: "周健康趋势分析报告",
		content:    []string{"每月8次上门服务", "全面健康监测", "个性化护理方案", "康复训练指导"},
		monitoring: []string{"血压", "血糖", "体温", "心率", "血氧", "体重"},
		extras:     []string{"康复训练指导"},
		gifts:      []string{"节日慰问礼品", "生日礼品", "季度礼品"},
	},
	{
		level: 6, name: "高级护理型", audience: "有多种慢性病，需要高级护理的老年人",
		price: 1280, frequency: 12,
		staff: "主管护师", hospitals: "三级医疗机构", hours: "每天可预约，节假日除外", reports: "双周健康趋势分析报告",
		content:    []string{"每月12次上门服务", "全面健康监测 + 专项检查", "个性化慢性病管理方案", "康复训练 + 理疗指导"},
		monitoring: []string{"血压", "血糖", "体温", "心率", "血氧", "体重", "专项检查"},
		extras:     []string{"理疗指导", "营养膳食建议"},
		gifts:      []string{"节日慰问礼品", "生日礼品", "季度礼品"},
	},
	{
		level: 7, name: "专家指导型", audience: "病情复杂，需要专家指导的老年人",
		price: 1880, frequency: 16,
		staff: "专家级护理师", hospitals: "三级甲等医疗机构 + 专家资源", hours: "每天可预约，节假日可协商", reports: "周健康趋势分析报告 + 专家建议",
		content:    []string{"每月16次上门服务", "全面健康监测 + 专项检查 + 个性化检查", "专家级健康管理方案", "康复训练 + 理疗 + 心理疏导"},
		monitoring: []string{"血压", "血糖", "体温", "心率", "血氧", "体重", "专项检查", "个性化检查"},
		extras:     []string{"心理疏导", "营养膳食", "运动处方"},
		gifts:      []string{"节日慰问礼品", "生日礼品", "季度礼品", "年度体检"},
	},
	{
		level: 8, name: "专属护理型", audience: "高净值客户，对服务质量要求极高的老年人",
		price: 2280, frequency: 20,
		staff: "专家级护理师", hospitals: "知名三甲医院 + 专家资源 + 特需门诊", hours: "每天可预约，节假日可协商", reports: "每周健康趋势分析报告 + 专家建议",
		content:    []string{"每月20次上门服务", "全面健康监测 + 专项检查 + 个性化检查 + 预防性检查", "专属健康管理师服务", "康复训练 + 理疗 + 心理疏导 + 中医调理"},
		monitoring: []string{"血压", "血糖", "体温", "心率", "血氧", "体重", "专项检查", "个性化检查", "预防性检查"},
		extras:     []string{"中医调理", "个性化营养膳食", "运动处方", "睡眠管理"},
		gifts:      []string{"节日慰问礼品", "生日礼品", "季度礼品", "半年度体检"},
	},
	{
		level: 9, name: "全程陪护型", audience: "行动严重不便，需要高频次服务的老年人",
		price: 2680, frequency: 25,
		staff: "专家级护理师 + 合作医生", hospitals: "知名三甲医院 + 专家资源 + 特需门诊 + 急救网络",
		hours: "每天可预约，节假日可协商，紧急情况24小时响应", reports: "每周健康趋势分析报告 + 专家建议 + 医生会诊",
		content:    []string{"每月25次上门服务", "全面健康监测 + 专项检查 + 个性化检查 + 预防性检查 + 应急检查", "专属健康管理师 + 家庭医生服务", "康复训练 + 理疗 + 心理疏导 + 中医调理 + 专业护理"},
		monitoring: []string{"血压", "血糖", "体温", "心率", "血氧", "体重", "专项检查", "个性化检查", "预防性检查", "应急检查"},
		extras:     []string{"专业护理", "用药管理", "紧急医疗绿色通道"},
		gifts:      []string{"节日慰问礼品", "生日礼品", "季度礼品", "半年度体检", "紧急医疗绿色通道"},
	},
	{
		level: 10, name: "尊享专家型", audience: "超高净值客户，要求最高级别服务的老年人",
		price: 2980, frequency: 30,
		staff: "专家顾问团队", hospitals: "顶级三甲医院 + 知名专家 + 特需门诊 + 急救网络 + 国际医疗资源",
		hours: "每天可预约，节假日可协商，紧急情况24小时响应", reports: "每周健康趋势分析报告 + 专家建议 + 医生会诊 + 远程医疗咨询",
		content:    []string{"每月30次上门服务（可按需增加）", "全面健康监测 + 专项检查 + 个性化检查 + 预防性检查 + 应急检查 + 远程监测", "专属健康管理师 + 家庭医生 + 专家顾问团队服务", "康复训练 + 理疗 + 心理疏导 + 中医调理 + 专业护理 + 临终关怀咨询"},
		monitoring: []string{"血压", "血糖", "体温", "心率", "血氧", "体重", "专项检查", "个性化检查", "预防性检查", "应急检查", "远程监测"},
		extras:     []string{"基因检测分析", "远程医疗咨询", "临终关怀咨询", "专车接送", "国际医疗资源"},
		gifts:      []string{"节日慰问礼品", "生日礼品", "季度礼品", "年度高端体检", "紧急医疗绿色通道", "专车接送"},
	},
}

func (t tier) request() *model.ServicePackageRequest {
	level := t.level
	desc, audience := t.audience, t.audience
	staff, hospitals, hours, reports := t.staff, t.hospitals, t.hours, t.reports
	active := true
	return &model.ServicePackageRequest{
		Name:               t.name,
		Description:        &desc,
		Price:              t.price,
		DurationDays:       30,
		ServiceFrequency:   t.frequency,
		PackageLevel:       &level,
		IsSystemDefault:    true,
		TargetUsers:        &audience,
		StaffLevel:         &staff,
		HospitalLevel:      &hospitals,
		ServiceTime:        &hours,
		ReportFrequency:    &reports,
		ServiceContent:     model.StringList(t.content),
		MonitoringItems:    model.StringList(t.monitoring),
		AdditionalServices: orEmpty(t.extras),
		GiftsIncluded:      orEmpty(t.gifts),
		IsActive:           &active,
	}
}

func orEmpty(items []string) model.StringList {
	if items == nil {
		return model.StringList{}
	}
	return model.StringList(items)
}
