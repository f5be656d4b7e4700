package main

type seedCategory struct {
	name        string
	description string
	children    []seedCategory
}

var seedCategories = []seedCategory{
	{"电子产品", "手机、电脑、数码相机等各类电子设备及配件", []seedCategory{
		{"手机", "智能手机、功能机及手机配件", nil},
		{"电脑", "台式机、笔记本电脑、平板电脑及电脑配件", nil},
		{"相机", "数码相机、单反相机、摄像设备及摄影配件", nil},
		{"耳机音响", "耳机、音响、音频设备及相关配件", nil},
		{"游戏设备", "游戏主机、掌机、游戏手柄及游戏周边", nil},
	}},
	{"家具家居", "沙发、桌椅、床具、厨具等家庭生活用品", []seedCategory{
		{"沙发", "布艺沙发、皮质沙发、实木沙发等各类沙发", nil},
		{"桌椅", "餐桌餐椅、办公桌椅、休闲桌椅等", nil},
		{"床具", "床架、床垫、床上用品等卧室家具", nil},
		{"厨具", "锅具、餐具、厨房小家电等烹饪用品", nil},
		{"装饰品", "挂画、花瓶、摆件等家居装饰用品", nil},
	}},
	{"服装配饰", "男装女装、鞋靴包包、首饰配饰等时尚用品", []seedCategory{
		{"男装", "男士服装、西装、休闲装等", nil},
		{"女装", "女士服装、连衣裙、上衣下装等", nil},
		{"鞋靴", "运动鞋、皮鞋、靴子等各类鞋履", nil},
		{"包包", "手提包、背包、钱包等各类包袋", nil},
		{"首饰", "项链、手镯、戒指、耳环等饰品", nil},
	}},
	{"图书文具", "各类图书、学习用品、办公文具等知识文化用品", []seedCategory{
		{"小说", "文学小说、网络小说、经典名著等", nil},
		{"教辅", "教材、习题集、考试辅导书等学习资料", nil},
		{"文具", "笔类、本册、办公用品等学习文具", nil},
		{"艺术书籍", "美术、设计、摄影等艺术类书籍", nil},
	}},
	{"运动器材", "健身器材、球类运动、户外运动等体育用品", []seedCategory{
		{"健身器材", "跑步机、哑铃、瑜伽垫等健身设备", nil},
		{"球类", "篮球、足球、乒乓球等各类球类运动用品", nil},
		{"户外用品", "帐篷、登山包、户外服装等户外运动装备", nil},
	}},
	{"汽车用品", "汽车配件、车载设备、汽车美容用品等", nil},
	{"母婴用品", "婴儿用品、儿童玩具、孕妇用品等母婴相关产品", nil},
}

type seedUser struct {
	username string
	email    string
	phone    string
}

// Every seeded account uses seedPassword.
const seedPassword = "password123"

var seedUsers = []seedUser{
	{"zhangsan", "zhangsan@qq.com", "13812345678"},
	{"李小明", "lixiaoming@163.com", "13923456789"},
	{"mike_chen", "mike.chen@gmail.com", "13634567890"},
	{"王丽娜", "wanglina@qq.com", "13745678901"},
	{"john_doe", "john.doe@hotmail.com", "13856789012"},
	{"陈大华", "chendahua@163.com", "13967890123"},
	{"sarah_liu", "sarah.liu@gmail.com", "13078901234"},
	{"张伟", "zhangwei@qq.com", "13189012345"},
	{"david_wang", "david.wang@163.com", "13290123456"},
	{"刘芳", "liufang@hotmail.com", "13301234567"},
}

type seedProduct struct {
	title         string
	description   string
	brand         string
	model         string
	condition     string
	originalPrice float64
	userPrice     float64
	usageMonths   int
	category      string // sub-category name
	seller        string // seed user email
}

var seedProducts = []seedProduct{
	{"iPhone 14 Pro 256G 暗紫色", "国行正品，电池健康 92%，无拆无修", "Apple", "iPhone 14 Pro", "九成新", 8999, 6800, 8, "手机", "zhangsan@qq.com"},
	{"MacBook Air M2 13寸", "日常办公使用，屏幕无划痕，带原装充电器", "Apple", "MacBook Air M2", "八成新", 9499, 6500, 14, "电脑", "lixiaoming@163.com"},
	{"华为 Mate 50 曜金黑", "换新机闲置，配件齐全", "Huawei", "Mate 50", "九成新", 4999, 3200, 10, "手机", "mike.chen@gmail.com"},
	{"索尼 A7M3 全画幅微单", "快门数约 1.2 万，附 28-70 套机镜头", "Sony", "ILCE-7M3", "八成新", 12999, 7800, 20, "相机", "wanglina@qq.com"},
	{"AirPods Pro 第二代", "全新未拆封，抽奖所得", "Apple", "AirPods Pro 2", "全新", 1899, 1600, 0, "耳机音响", "john.doe@hotmail.com"},
	{"任天堂 Switch 续航版", "手柄有轻微漂移，送三张游戏卡", "Nintendo", "Switch", "七成新", 2099, 1100, 26, "游戏设备", "chendahua@163.com"},
	{"宜家三人布艺沙发", "搬家转让，需自提", "IKEA", "KIVIK", "七成新", 2999, 900, 30, "沙发", "sarah.liu@gmail.com"},
	{"Nike Air Max 270 42码", "只穿过几次，鞋底干净", "Nike", "Air Max 270", "九成新", 1099, 599, 3, "鞋靴", "zhangwei@qq.com"},
	{"Coach 托特包", "专柜购入，五金有轻微氧化", "Coach", "Tote 34", "八成新", 3500, 1500, 12, "包包", "liufang@hotmail.com"},
	{"《三体》全集 典藏版", "书页完好，无笔记", "", "", "八成新", 168, 60, 24, "小说", "david.wang@163.com"},
	{"可调节哑铃 20kg 一对", "居家健身闲置", "", "", "七成新", 399, 150, 18, "健身器材", "zhangsan@qq.com"},
	{"小米平板 5 8+256G", "带键盘和笔，追剧神器", "Xiaomi", "Pad 5", "九成新", 1999, 1200, 6, "电脑", "lixiaoming@163.com"},
}

// rootOf returns the top-level seed category containing name.
func rootOf(name string) (string, bool) {
	for _, root := range seedCategories {
		if root.name == name {
			return root.name, true
		}
		for _, child := range root.children {
			if child.name == name {
				return root.name, true
			}
		}
	}
	return "", false
}
