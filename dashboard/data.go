package dashboard

// Demo content. Every function returns fresh slices so callers may
// modify what they receive.

func clientTasks() []Task {
	return []Task{
		{
			ID:              "1",
			Title:           "Web Application Security Audit",
			Description:     "Comprehensive security testing of e-commerce platform including SQL injection, XSS, and authentication bypass testing.",
			Status:          StatusActive,
			Priority:        PriorityHigh,
			Assignee:        "Alex Rodriguez",
			DueDate:         "Dec 15, 2024",
			Progress:        65,
			Vulnerabilities: 3,
		},
		{
			ID:              "2",
			Title:           "Network Penetration Test",
			Description:     "Internal network security assessment covering firewall configuration, wireless security, and privilege escalation.",
			Status:          StatusCompleted,
			Priority:        PriorityMedium,
			Assignee:        "Sarah Chen",
			DueDate:         "Dec 10, 2024",
			Progress:        100,
			Vulnerabilities: 7,
		},
		{
			ID:          "3",
			Title:       "Mobile App Security Review",
			Description: "Android and iOS application security testing focusing on data storage, API security, and reverse engineering.",
			Status:      StatusPending,
			Priority:    PriorityCritical,
			DueDate:     "Dec 20, 2024",
		},
	}
}

func adminTasks() []Task {
	return []Task{
		{
			ID:              "1",
			Title:           "Quarterly Security Assessment - TechCorp",
			Description:     "Complete infrastructure and application security review for enterprise client.",
			Status:          StatusActive,
			Priority:        PriorityHigh,
			Assignee:        "Security Team Alpha",
			DueDate:         "Jan 5, 2025",
			Progress:        30,
			Vulnerabilities: 2,
		},
		{
			ID:          "2",
			Title:       "Cloud Security Audit - StartupXYZ",
			Description: "AWS infrastructure security assessment including IAM, S3, and EC2 configurations.",
			Status:      StatusPending,
			Priority:    PriorityMedium,
			DueDate:     "Dec 22, 2024",
		},
	}
}

func hackerTasks() []Task {
	return []Task{
		{
			ID:          "1",
			Title:       "Banking App Penetration Test",
			Description: "Security testing of mobile banking application focusing on transaction security and authentication mechanisms.",
			Status:      StatusPending,
			Priority:    PriorityCritical,
			DueDate:     "Dec 18, 2024",
		},
		{
			ID:              "2",
			Title:           "E-commerce Platform Assessment",
			Description:     "Web application security testing including payment processing, user data protection, and session management.",
			Status:          StatusActive,
			Priority:        PriorityHigh,
			Assignee:        "You",
			DueDate:         "Dec 25, 2024",
			Progress:        40,
			Vulnerabilities: 1,
		},
		{
			ID:              "3",
			Title:           "IoT Device Security Analysis",
			Description:     "Firmware analysis and network security testing of smart home devices.",
			Status:          StatusCompleted,
			Priority:        PriorityMedium,
			Assignee:        "You",
			DueDate:         "Dec 8, 2024",
			Progress:        100,
			Vulnerabilities: 5,
		},
	}
}

func clientStats() []Stat {
	return []Stat{
		{Title: "Active Tests", Value: "3", Note: "+2 from last week"},
		{Title: "Vulnerabilities Found", Value: "8", Note: "-3 resolved this week"},
		{Title: "Risk Score", Value: "75%"},
	}
}

func adminStats() []Stat {
	return []Stat{
		{Title: "Total Users", Value: "145", Note: "+12 new this month"},
		{Title: "Active Tests", Value: "23", Note: "Across all clients"},
		{Title: "Pending Approvals", Value: "7", Note: "Require attention"},
		{Title: "System Health", Value: "98%"},
	}
}

func hackerStats() []Stat {
	return []Stat{
		{Title: "Available Tasks", Value: "8", Note: "New assignments"},
		{Title: "Active Tasks", Value: "2", Note: "In progress"},
		{Title: "Reputation", Value: "92%"},
	}
}

func overview() []Stat {
	return []Stat{
		{Title: "Active Tests", Value: "23", Trend: "+12%", TrendUp: true},
		{Title: "Total Clients", Value: "47", Trend: "+5%", TrendUp: true},
		{Title: "Critical Issues", Value: "8", Trend: "-3%"},
		{Title: "Completed Tests", Value: "156", Trend: "+18%", TrendUp: true},
		{Title: "Pending Reviews", Value: "12", Trend: "+2%", TrendUp: true},
		{Title: "Success Rate", Value: "94.2%", Trend: "+1.2%", TrendUp: true},
	}
}

func projects() []Project {
	return []Project{
		{ID: 1, Name: "E-commerce Platform", Status: "in_progress", Progress: 75, Vulnerabilities: 12, LastScan: "2 days ago", Severity: "medium"},
		{ID: 2, Name: "Mobile Banking App", Status: "completed", Progress: 100, Vulnerabilities: 3, LastScan: "1 week ago", Severity: "low"},
		{ID: 3, Name: "Corporate Website", Status: "pending", LastScan: "Not started"},
	}
}

func reports() []Report {
	return []Report{
		{ID: 1, Name: "Q4 Security Assessment", Date: "2024-01-15", Type: "Full Report", Size: "2.4 MB"},
		{ID: 2, Name: "API Vulnerability Scan", Date: "2024-01-10", Type: "Technical Report", Size: "1.8 MB"},
		{ID: 3, Name: "Compliance Summary", Date: "2024-01-05", Type: "Executive Summary", Size: "856 KB"},
	}
}

func recentActivity() []Activity {
	return []Activity{
		{Action: "Vulnerability scan completed", Time: "2 hours ago", Kind: "success"},
		{Action: "New task assigned", Time: "4 hours ago", Kind: "info"},
		{Action: "Report generated", Time: "1 day ago", Kind: "success"},
		{Action: "Security alert", Time: "2 days ago", Kind: "warning"},
	}
}

func adminActivity() []Activity {
	return []Activity{
		{Action: "New user registration", Subject: "john.doe@company.com", Time: "2 minutes ago", Kind: "info"},
		{Action: "Security scan completed", Subject: "E-commerce Platform", Time: "15 minutes ago", Kind: "success"},
		{Action: "Critical vulnerability found", Subject: "High", Time: "1 hour ago", Kind: "error"},
		{Action: "User permissions updated", Subject: "sarah.hacker@security.com", Time: "2 hours ago", Kind: "info"},
	}
}

func approvals() []Approval {
	return []Approval{
		{ID: 1, Type: "User Registration", Subject: "new.user@startup.com", Detail: "Client"},
		{ID: 2, Type: "Scan Request", Subject: "Banking API", Detail: "High"},
		{ID: 3, Type: "Permission Change", Subject: "ethical.hacker@firm.com", Detail: "Admin Access"},
	}
}

func assignments() []Assignment {
	return []Assignment{
		{ID: 1, Target: "Banking API v2.1", Client: "SecureBank Corp", Priority: PriorityHigh, Deadline: "2024-01-25", Status: "active", Scope: "Full Stack"},
		{ID: 2, Target: "E-commerce Platform", Client: "ShopTech Inc", Priority: PriorityMedium, Deadline: "2024-02-05", Status: "pending", Scope: "Web Application"},
		{ID: 3, Target: "Mobile Banking App", Client: "FinanceFirst Ltd", Priority: PriorityHigh, Deadline: "2024-01-30", Status: "completed", Scope: "Mobile App"},
	}
}

func findings() []Finding {
	return []Finding{
		{ID: 1, Type: "SQL Injection", Severity: "Critical", Target: "Banking API", Status: "open"},
		{ID: 2, Type: "XSS", Severity: "High", Target: "E-commerce Platform", Status: "verified"},
		{ID: 3, Type: "CSRF", Severity: "Medium", Target: "Mobile App", Status: "fixed"},
		{ID: 4, Type: "Authentication Bypass", Severity: "Critical", Target: "Banking API", Status: "open"},
	}
}

func tools() []Tool {
	return []Tool{
		{Name: "Burp Suite Professional", Status: "active", Version: "2024.1"},
		{Name: "OWASP ZAP", Status: "active", Version: "2.14.0"},
		{Name: "Nmap Network Scanner", Status: "idle", Version: "7.94"},
		{Name: "Metasploit Framework", Status: "idle", Version: "6.3.55"},
	}
}

func charts() Charts {
	return Charts{
		TestResults: []MonthResult{
			{Month: "Jan", Passed: 24, Failed: 8, Pending: 12},
			{Month: "Feb", Passed: 30, Failed: 5, Pending: 8},
			{Month: "Mar", Passed: 28, Failed: 7, Pending: 15},
			{Month: "Apr", Passed: 35, Failed: 3, Pending: 10},
			{Month: "May", Passed: 32, Failed: 6, Pending: 18},
			{Month: "Jun", Passed: 40, Failed: 4, Pending: 14},
		},
		Vulnerabilities: []Slice{
			{Name: "Critical", Value: 12},
			{Name: "High", Value: 28},
			{Name: "Medium", Value: 45},
			{Name: "Low", Value: 32},
		},
		Progress: []WeekProgress{
			{Week: "W1", Completion: 65},
			{Week: "W2", Completion: 72},
			{Week: "W3", Completion: 78},
			{Week: "W4", Completion: 85},
			{Week: "W5", Completion: 88},
			{Week: "W6", Completion: 95},
		},
	}
}

// navigation lists every section; entries are filtered by permission.
func navigation() []NavSection {
	return []NavSection{
		{Title: "Dashboard", Items: []NavItem{
			{Title: "Overview", URL: "/", Permission: "dashboard:view"},
			{Title: "Active Tests", URL: "/tests", Permission: "tasks:view"},
			{Title: "Reports", URL: "/reports", Permission: "reports:view"},
		}},
		{Title: "Testing", Items: []NavItem{
			{Title: "Pending Tests", URL: "/testing/pending", Permission: "tasks:view"},
			{Title: "In Progress", URL: "/testing/active", Permission: "tasks:view"},
			{Title: "Completed", URL: "/testing/completed", Permission: "tasks:view"},
		}},
		{Title: "Administration", Permission: "users:manage", Items: []NavItem{
			{Title: "User Management", URL: "/admin/users", Permission: "users:manage"},
			{Title: "System Config", URL: "/admin/config", Permission: "system:configure"},
		}},
	}
}
